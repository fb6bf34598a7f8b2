//go:build linux

package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Roots of the sysfs and usbfs trees, swapped out by tests.
var (
	sysfsRoot = "/sys"
	usbfsRoot = "/dev/bus/usb"
)

// usbDevicePath maps a block device node such as /dev/sdb onto the USB
// device node of the hardware behind it, e.g. /dev/bus/usb/002/005.
func usbDevicePath(blockPath string) (string, error) {
	name := filepath.Base(blockPath)
	if resolved, err := filepath.EvalSymlinks(blockPath); err == nil {
		name = filepath.Base(resolved)
	}

	sysDev, err := filepath.EvalSymlinks(filepath.Join(sysfsRoot, "class", "block", name))
	if err != nil {
		return "", fmt.Errorf("%w: %s has no sysfs entry: %v", ErrNotUSB, name, err)
	}

	stop := filepath.Clean(sysfsRoot)
	for dir := sysDev; dir != stop && dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		bus, okBus := readSysfsInt(filepath.Join(dir, "busnum"))
		dev, okDev := readSysfsInt(filepath.Join(dir, "devnum"))
		if okBus && okDev {
			return filepath.Join(usbfsRoot, fmt.Sprintf("%03d", bus), fmt.Sprintf("%03d", dev)), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotUSB, blockPath)
}

func readSysfsInt(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsUSBBacked reports whether the block device at path sits behind a USB
// device, i.e. whether ResetUSB can work on it.
func IsUSBBacked(path string) bool {
	_, err := usbDevicePath(path)
	return err == nil
}
