package device

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"os"
)

// BlockOptions configures OpenBlockDevice.
type BlockOptions struct {
	Reset ResetType
	// Prompt and Confirm carry the manual reset dialogue. They default to
	// stdout and stdin.
	Prompt  io.Writer
	Confirm io.Reader
}

// BlockDevice is a physical drive opened for uncached, synchronous I/O.
type BlockDevice struct {
	path  string
	f     *os.File
	size  uint64
	order int
	reset ResetType

	// usbPath is the USB device node used by ResetUSB.
	usbPath string

	prompt  io.Writer
	confirm *bufio.Reader
}

// OpenBlockDevice opens the block device at path. The size and block size
// are taken from the kernel.
func OpenBlockDevice(path string, opts BlockOptions) (*BlockDevice, error) {
	f, err := openDevice(path)
	if err != nil {
		return nil, &DeviceError{Path: path, Err: err}
	}

	size, blockSize, err := probeDevice(f)
	if err != nil {
		f.Close()
		return nil, &DeviceError{Path: path, Err: err}
	}
	order, ok := ilog2(blockSize)
	if !ok || order < MinBlockOrder || order > MaxBlockOrder {
		f.Close()
		return nil, &DeviceError{Path: path, Err: fmt.Errorf("unsupported block size %d", blockSize)}
	}

	d := &BlockDevice{
		path:    path,
		f:       f,
		size:    size,
		order:   order,
		reset:   opts.Reset,
		prompt:  opts.Prompt,
		confirm: bufio.NewReader(opts.Confirm),
	}
	if d.prompt == nil {
		d.prompt = os.Stdout
	}
	if opts.Confirm == nil {
		d.confirm = bufio.NewReader(os.Stdin)
	}

	if err := prepareReset(d); err != nil {
		f.Close()
		return nil, &DeviceError{Path: path, Err: err}
	}
	return d, nil
}

// Probe reports the size and block size of the block device at path
// without opening it for writing.
func Probe(path string) (uint64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, &DeviceError{Path: path, Err: err}
	}
	defer f.Close()

	size, blockSize, err := probeDevice(f)
	if err != nil {
		return 0, 0, &DeviceError{Path: path, Err: err}
	}
	return size, blockSize, nil
}

// Path returns the device node.
func (d *BlockDevice) Path() string { return d.path }

// ResetType returns the configured reset strategy.
func (d *BlockDevice) ResetType() ResetType { return d.reset }

func (d *BlockDevice) BlockOrder() int  { return d.order }
func (d *BlockDevice) SizeByte() uint64 { return d.size }

func (d *BlockDevice) ReadBlock(buf []byte, block uint64) error {
	if err := checkBlock(d, "read", buf, block); err != nil {
		return err
	}
	if d.f == nil {
		return &IoError{Op: "read", Block: block, Err: os.ErrClosed}
	}

	n, err := d.f.ReadAt(buf, int64(block<<d.order))
	if err != nil {
		return &IoError{Op: "read", Block: block, Err: err}
	}
	if n != len(buf) {
		return &IoError{Op: "read", Block: block, Err: ErrShortTransfer}
	}
	return nil
}

func (d *BlockDevice) WriteBlock(buf []byte, block uint64) error {
	if err := checkBlock(d, "write", buf, block); err != nil {
		return err
	}
	if d.f == nil {
		return &IoError{Op: "write", Block: block, Err: os.ErrClosed}
	}

	n, err := d.f.WriteAt(buf, int64(block<<d.order))
	if err != nil {
		return &IoError{Op: "write", Block: block, Err: err}
	}
	if n != len(buf) {
		return &IoError{Op: "write", Block: block, Err: ErrShortTransfer}
	}
	return nil
}

// Reset runs the configured reset strategy.
func (d *BlockDevice) Reset() error {
	return d.runReset(d.reset)
}

func (d *BlockDevice) Close() error {
	return d.closeFile()
}

func (d *BlockDevice) closeFile() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

func (d *BlockDevice) reopen() error {
	f, err := openDevice(d.path)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", d.path, err)
	}
	d.f = f
	return nil
}

func ilog2(n int) (int, bool) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, false
	}
	return bits.TrailingZeros(uint(n)), true
}
