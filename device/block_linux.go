//go:build linux

package device

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// _IO('U', 20)
const usbdevfsReset = 0x5514

// How long a reset device node may take to come back.
var reopenTimeout = 10 * time.Second

func openDevice(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|unix.O_DIRECT|unix.O_SYNC, 0)
}

// probeDevice returns the size in bytes and the logical block size.
func probeDevice(f *os.File) (uint64, int, error) {
	fd := int(f.Fd())

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, 0, fmt.Errorf("stat: %w", err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return 0, 0, ErrNotBlockDevice
	}

	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, 0, fmt.Errorf("BLKGETSIZE64: %w", errno)
	}

	blockSize, err := unix.IoctlGetInt(fd, unix.BLKBSZGET)
	if err != nil {
		return 0, 0, fmt.Errorf("BLKBSZGET: %w", err)
	}
	return size, blockSize, nil
}

func prepareReset(d *BlockDevice) error {
	if d.reset != ResetUSB {
		return nil
	}
	usb, err := usbDevicePath(d.path)
	if err != nil {
		return err
	}
	d.usbPath = usb
	return nil
}

var resetters = map[ResetType]resetFunc{
	ResetManualUSB: manualReset,
	ResetUSB:       usbReset,
	ResetNone:      flushReset,
}

func usbReset(d *BlockDevice) error {
	if d.usbPath == "" {
		return ErrNotUSB
	}
	if err := d.closeFile(); err != nil {
		return err
	}

	hw, err := os.OpenFile(d.usbPath, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.usbPath, err)
	}
	err = unix.IoctlSetInt(int(hw.Fd()), usbdevfsReset, 0)
	hw.Close()
	if err != nil {
		return fmt.Errorf("USBDEVFS_RESET %s: %w", d.usbPath, err)
	}

	return reopenWhenBack(d)
}

// reopenWhenBack waits for the device node to be re-enumerated.
func reopenWhenBack(d *BlockDevice) error {
	deadline := time.Now().Add(reopenTimeout)
	for {
		err := d.reopen()
		if err == nil || time.Now().After(deadline) {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// flushReset pushes written data out, asks the kernel to drop its cached
// copy and reopens the node. It does not touch the hardware.
func flushReset(d *BlockDevice) error {
	if d.f == nil {
		return d.reopen()
	}
	fd := int(d.f.Fd())
	if err := unix.Fdatasync(fd); err != nil {
		return fmt.Errorf("fdatasync: %w", err)
	}
	// BLKFLSBUF needs CAP_SYS_ADMIN; the fadvise hint below still applies
	// without it.
	if err := unix.IoctlSetInt(fd, unix.BLKFLSBUF, 0); err != nil && !errors.Is(err, unix.EPERM) && !errors.Is(err, unix.EACCES) {
		return fmt.Errorf("BLKFLSBUF: %w", err)
	}
	if err := unix.Fadvise(fd, 0, 0, unix.FADV_DONTNEED); err != nil {
		return fmt.Errorf("fadvise: %w", err)
	}
	if err := d.closeFile(); err != nil {
		return err
	}
	return d.reopen()
}
