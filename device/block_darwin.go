//go:build darwin

package device

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	dkiocGetBlockSize  = 0x40046418 // _IOR('d', 24, uint32)
	dkiocGetBlockCount = 0x40086419 // _IOR('d', 25, uint64)
)

// macOS has no O_DIRECT; F_NOCACHE is set after opening instead.
func openDevice(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	if _, err := unix.FcntlInt(f.Fd(), unix.F_NOCACHE, 1); err != nil {
		f.Close()
		return nil, fmt.Errorf("F_NOCACHE: %w", err)
	}
	return f, nil
}

func probeDevice(f *os.File) (uint64, int, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return 0, 0, fmt.Errorf("stat: %w", err)
	}
	if mode := st.Mode & unix.S_IFMT; mode != unix.S_IFBLK && mode != unix.S_IFCHR {
		return 0, 0, ErrNotBlockDevice
	}

	var blockSize uint32
	var blockCount uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), dkiocGetBlockSize, uintptr(unsafe.Pointer(&blockSize)))
	if errno != 0 {
		return 0, 0, fmt.Errorf("DKIOCGETBLOCKSIZE: %w", errno)
	}
	_, _, errno = unix.Syscall(unix.SYS_IOCTL, f.Fd(), dkiocGetBlockCount, uintptr(unsafe.Pointer(&blockCount)))
	if errno != 0 {
		return 0, 0, fmt.Errorf("DKIOCGETBLOCKCOUNT: %w", errno)
	}
	return uint64(blockSize) * blockCount, int(blockSize), nil
}

func prepareReset(*BlockDevice) error { return nil }
