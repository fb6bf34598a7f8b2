package device

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ResetType selects how a real device is forced to drop its write cache
// between the write and the read pass.
type ResetType int

const (
	// ResetManualUSB asks a human to unplug and plug the drive back.
	ResetManualUSB ResetType = iota
	// ResetUSB issues a USB port reset to the hardware backing the device.
	ResetUSB
	// ResetNone only flushes and reopens the device node.
	ResetNone

	numResetTypes
)

// DefaultResetType works everywhere a human is present.
const DefaultResetType = ResetManualUSB

var resetNames = [numResetTypes]string{
	ResetManualUSB: "manual-usb",
	ResetUSB:       "usb",
	ResetNone:      "none",
}

func (t ResetType) String() string {
	if t < 0 || t >= numResetTypes {
		return "reset-" + strconv.Itoa(int(t))
	}
	return resetNames[t]
}

// ResetTypes lists every reset type.
func ResetTypes() []ResetType {
	out := make([]ResetType, 0, numResetTypes)
	for t := ResetType(0); t < numResetTypes; t++ {
		out = append(out, t)
	}
	return out
}

// ParseResetType accepts a reset type name or its number.
func ParseResetType(s string) (ResetType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range resetNames {
		if s == name {
			return ResetType(t), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < int(numResetTypes) {
		return ResetType(n), nil
	}
	return 0, &ConfigError{
		Param:  "reset type",
		Reason: fmt.Sprintf("%q is not one of %s", s, strings.Join(resetNames[:], ", ")),
	}
}

// resetFunc performs one reset strategy on an open block device.
type resetFunc func(d *BlockDevice) error

// SupportsReset reports whether t can run on this platform.
func SupportsReset(t ResetType) bool {
	_, ok := resetters[t]
	return ok
}

func (d *BlockDevice) runReset(t ResetType) error {
	fn, ok := resetters[t]
	if !ok {
		return &ResetError{Type: t, Err: ErrResetUnsupported}
	}
	if err := fn(d); err != nil {
		return &ResetError{Type: t, Err: err}
	}
	return nil
}

// manualReset closes the device, waits for the operator to replug it and
// opens it again.
func manualReset(d *BlockDevice) error {
	if err := d.closeFile(); err != nil {
		return err
	}
	fmt.Fprintln(d.prompt, "Please unplug and plug back the USB drive, and press Enter to continue...")
	if line, err := d.confirm.ReadString('\n'); err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return fmt.Errorf("wait for operator: %w", err)
	}
	return d.reopen()
}
