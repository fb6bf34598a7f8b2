package device

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// FileDevice emulates a drive that reports more capacity than it has.
// Only RealSizeByte bytes are kept in the backing file; logical addresses
// beyond that alias back onto earlier storage.
type FileDevice struct {
	path string
	f    *os.File
	geom Geometry
	keep bool
}

// NewFileDevice validates geom and creates a fresh backing file at path.
// The file must not exist yet. Unless keep is set, Close removes it.
func NewFileDevice(path string, geom Geometry, keep bool) (*FileDevice, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, &DeviceError{Path: path, Err: err}
	}
	if err := f.Truncate(int64(geom.RealSizeByte)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &DeviceError{Path: path, Err: fmt.Errorf("size backing file: %w", err)}
	}

	geom.BlockOrder = geom.EffectiveBlockOrder()
	return &FileDevice{path: path, f: f, geom: geom, keep: keep}, nil
}

// Path returns the backing file path.
func (d *FileDevice) Path() string { return d.path }

// Geometry returns the emulated geometry with the block order resolved.
func (d *FileDevice) Geometry() Geometry { return d.geom }

func (d *FileDevice) BlockOrder() int  { return d.geom.BlockOrder }
func (d *FileDevice) SizeByte() uint64 { return d.geom.FakeSizeByte }

func (d *FileDevice) ReadBlock(buf []byte, block uint64) error {
	if err := checkBlock(d, "read", buf, block); err != nil {
		return err
	}
	if d.f == nil {
		return &IoError{Op: "read", Block: block, Err: os.ErrClosed}
	}

	off := d.geom.physical(block << d.geom.BlockOrder)
	n, err := d.f.ReadAt(buf, int64(off))
	if err != nil && !errors.Is(err, io.EOF) {
		return &IoError{Op: "read", Block: block, Err: err}
	}
	// Past the end of the backing file reads as zeros.
	clear(buf[n:])
	return nil
}

func (d *FileDevice) WriteBlock(buf []byte, block uint64) error {
	if err := checkBlock(d, "write", buf, block); err != nil {
		return err
	}
	if d.f == nil {
		return &IoError{Op: "write", Block: block, Err: os.ErrClosed}
	}

	off := d.geom.physical(block << d.geom.BlockOrder)
	n, err := d.f.WriteAt(buf, int64(off))
	if err != nil {
		return &IoError{Op: "write", Block: block, Err: err}
	}
	if n != len(buf) {
		return &IoError{Op: "write", Block: block, Err: ErrShortTransfer}
	}
	return nil
}

// Reset flushes and reopens the backing file. There is no write cache to
// defeat, so this only exercises the reopen path real devices take.
func (d *FileDevice) Reset() error {
	if err := d.f.Sync(); err != nil {
		return &ResetError{Type: ResetNone, Err: err}
	}
	if err := d.f.Close(); err != nil {
		return &ResetError{Type: ResetNone, Err: err}
	}
	f, err := os.OpenFile(d.path, os.O_RDWR, 0)
	if err != nil {
		d.f = nil
		return &ResetError{Type: ResetNone, Err: fmt.Errorf("reopen %s: %w", d.path, err)}
	}
	d.f = f
	return nil
}

// Close releases the backing file and removes it unless it is kept.
func (d *FileDevice) Close() error {
	var err error
	if d.f != nil {
		err = d.f.Close()
		d.f = nil
	}
	if !d.keep {
		if rmErr := os.Remove(d.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}
	return err
}
