//go:build !linux

package device

// There is no portable way to reset a USB port outside Linux; ResetUSB is
// left out and reports ErrResetUnsupported.
var resetters = map[ResetType]resetFunc{
	ResetManualUSB: manualReset,
	ResetNone:      syncReset,
}

func syncReset(d *BlockDevice) error {
	if d.f != nil {
		if err := d.f.Sync(); err != nil {
			return err
		}
		if err := d.closeFile(); err != nil {
			return err
		}
	}
	return d.reopen()
}

// IsUSBBacked is always false where ResetUSB is unavailable.
func IsUSBBacked(string) bool { return false }
