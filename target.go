package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blkbrew/config"
	"blkbrew/device"
	"blkbrew/retrodfrg"
)

// openTarget opens the device named by cfg and describes it in one line.
func openTarget(cfg *config.Config, log *zap.Logger, console *operatorConsole) (device.Device, string, error) {
	if cfg.Debug {
		path, err := backingPath(cfg.Target)
		if err != nil {
			return nil, "", err
		}
		if cfg.ResetType != device.DefaultResetType {
			log.Debug("reset type has no effect on an emulated drive", zap.Stringer("reset_type", cfg.ResetType))
		}

		d, err := device.NewFileDevice(path, cfg.Geometry(), cfg.KeepFile)
		if err != nil {
			return nil, "", err
		}
		g := d.Geometry()
		log.Info("emulating drive",
			zap.String("file", path),
			zap.Uint64("real_size", g.RealSizeByte),
			zap.Uint64("fake_size", g.FakeSizeByte),
			zap.Int("wrap", g.WrapExponent),
			zap.Int("block_order", g.BlockOrder),
			zap.Bool("keep_file", cfg.KeepFile),
		)
		desc := fmt.Sprintf("Emulated drive: %s (real %s, announced %s, wrap 2^%d, block %d bytes)",
			path, config.FormatSize(g.RealSizeByte), config.FormatSize(g.FakeSizeByte), g.WrapExponent, device.BlockSize(d))
		return d, desc, nil
	}

	d, err := device.OpenBlockDevice(cfg.Target, device.BlockOptions{
		Reset:   cfg.ResetType,
		Prompt:  console,
		Confirm: console,
	})
	if err != nil {
		return nil, "", err
	}
	if !device.SupportsReset(cfg.ResetType) {
		log.Warn("reset type is not supported on this platform, the run will fail after writing",
			zap.Stringer("reset_type", cfg.ResetType))
	}
	log.Info("opened device",
		zap.String("path", d.Path()),
		zap.Uint64("size", d.SizeByte()),
		zap.Int("block_order", d.BlockOrder()),
		zap.Stringer("reset_type", d.ResetType()),
	)
	desc := fmt.Sprintf("Device: %s (%s, block %d bytes, reset %s)",
		d.Path(), config.FormatSize(d.SizeByte()), device.BlockSize(d), d.ResetType())
	return d, desc, nil
}

// backingPath returns target itself, or a fresh file name inside target
// when it is a directory. An existing file is refused later by
// NewFileDevice.
func backingPath(target string) (string, error) {
	st, err := os.Stat(target)
	switch {
	case err == nil && st.IsDir():
		return filepath.Join(target, "blkbrew-"+uuid.NewString()+".img"), nil
	case err == nil, os.IsNotExist(err):
		return target, nil
	default:
		return "", &device.DeviceError{Path: target, Err: err}
	}
}

// operatorConsole carries the manual reset dialogue. While the fullscreen
// UI is up, it hands the terminal back for the question and takes it over
// again once the operator answered.
type operatorConsole struct {
	ui  *retrodfrg.UI
	in  io.Reader
	out io.Writer

	suspended bool
}

func (c *operatorConsole) Write(p []byte) (int, error) {
	if c.ui != nil && !c.suspended {
		if err := c.ui.Suspend(); err != nil {
			return 0, err
		}
		c.suspended = true
	}
	return c.out.Write(p)
}

func (c *operatorConsole) Read(p []byte) (int, error) {
	n, err := c.in.Read(p)
	if c.suspended {
		c.suspended = false
		if rerr := c.ui.Resume(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return n, err
}
