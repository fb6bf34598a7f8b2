//go:build linux

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSysfs(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content+"\n"), 0644))
}

func TestDiscoverDevices(t *testing.T) {
	root := t.TempDir()
	writeSysfs(t, filepath.Join(root, "sdy", "size"), "2048")
	writeSysfs(t, filepath.Join(root, "sdy", "removable"), "1")
	writeSysfs(t, filepath.Join(root, "sdy", "device", "vendor"), "Generic ")
	writeSysfs(t, filepath.Join(root, "sdy", "device", "model"), "Flash Disk")
	writeSysfs(t, filepath.Join(root, "sdy1", "partition"), "1")
	writeSysfs(t, filepath.Join(root, "loop3", "size"), "0")
	writeSysfs(t, filepath.Join(root, "sr0", "size"), "0")

	oldSys, oldDev := sysBlockRoot, devRoot
	sysBlockRoot, devRoot = root, "/nonexistent/dev"
	t.Cleanup(func() { sysBlockRoot, devRoot = oldSys, oldDev })

	infos, err := discoverDevices()
	require.NoError(t, err)

	byPath := make(map[string]deviceInfo)
	for _, d := range infos {
		byPath[d.Path] = d
	}
	require.Len(t, byPath, 3, "sr0 is not listed")

	disk := byPath["/nonexistent/dev/sdy"]
	assert.True(t, disk.Compatible)
	assert.Equal(t, "Removable Disk", disk.Type)
	assert.Equal(t, uint64(2048*512), disk.SizeByte)
	assert.Equal(t, "Generic Flash Disk", disk.Model)
	assert.False(t, disk.USB)

	assert.Equal(t, "partition", byPath["/nonexistent/dev/sdy1"].Reason)
	assert.Equal(t, "loop device", byPath["/nonexistent/dev/loop3"].Reason)
}
