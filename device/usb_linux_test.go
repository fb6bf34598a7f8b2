//go:build linux

package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSysfs builds /sys/class/block/<name> pointing into a device tree and
// returns the sysfs root.
func fakeSysfs(t *testing.T, name string, usb bool) string {
	t.Helper()
	root := t.TempDir()

	usbDev := filepath.Join(root, "devices", "pci0000:00", "0000:00:14.0", "usb2", "2-1")
	blockDir := filepath.Join(usbDev, "2-1:1.0", "host6", "target6:0:0", "6:0:0:0", "block", name)
	require.NoError(t, os.MkdirAll(blockDir, 0755))
	if usb {
		require.NoError(t, os.WriteFile(filepath.Join(usbDev, "busnum"), []byte("2\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(usbDev, "devnum"), []byte("5\n"), 0644))
	}

	classDir := filepath.Join(root, "class", "block")
	require.NoError(t, os.MkdirAll(classDir, 0755))
	require.NoError(t, os.Symlink(blockDir, filepath.Join(classDir, name)))
	return root
}

func withSysfs(t *testing.T, root string) {
	t.Helper()
	oldSys, oldUsb := sysfsRoot, usbfsRoot
	sysfsRoot, usbfsRoot = root, "/dev/bus/usb"
	t.Cleanup(func() { sysfsRoot, usbfsRoot = oldSys, oldUsb })
}

func TestUSBDevicePath(t *testing.T) {
	withSysfs(t, fakeSysfs(t, "sdz", true))

	got, err := usbDevicePath("/dev/sdz")
	require.NoError(t, err)
	assert.Equal(t, "/dev/bus/usb/002/005", got)
	assert.True(t, IsUSBBacked("/dev/sdz"))
}

func TestUSBDevicePath_NotUSB(t *testing.T) {
	withSysfs(t, fakeSysfs(t, "sdz", false))

	_, err := usbDevicePath("/dev/sdz")
	assert.ErrorIs(t, err, ErrNotUSB)
	assert.False(t, IsUSBBacked("/dev/sdz"))
}

func TestUSBDevicePath_Unknown(t *testing.T) {
	withSysfs(t, t.TempDir())

	_, err := usbDevicePath("/dev/sdq")
	assert.ErrorIs(t, err, ErrNotUSB)
}

func TestUSBReset_WithoutUSBPath(t *testing.T) {
	d := &BlockDevice{path: "/nonexistent", reset: ResetUSB}

	err := d.Reset()
	var resetErr *ResetError
	require.ErrorAs(t, err, &resetErr)
	assert.ErrorIs(t, err, ErrNotUSB)
}
