package device

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange          = errors.New("block out of range")
	ErrBufferSize          = errors.New("buffer is not one block long")
	ErrShortTransfer       = errors.New("short transfer")
	ErrNotBlockDevice      = errors.New("not a block device")
	ErrNotUSB              = errors.New("block device is not backed by a USB device")
	ErrResetUnsupported    = errors.New("reset type not supported on this platform")
	ErrUnsupportedPlatform = errors.New("real block devices are not supported on this platform")
)

// ConfigError reports a parameter that can never work. It is raised before
// any I/O takes place.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// DeviceError reports a device that cannot be opened or created.
type DeviceError struct {
	Path string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %v", e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// IoError reports a failed single block transfer.
type IoError struct {
	Op    string
	Block uint64
	Err   error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s block 0x%x: %v", e.Op, e.Block, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// ResetError reports a failed reset. After one, the device content cannot
// be trusted to reflect what reached the media.
type ResetError struct {
	Type ResetType
	Err  error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("reset (%s): %v", e.Type, e.Err)
}

func (e *ResetError) Unwrap() error { return e.Err }
