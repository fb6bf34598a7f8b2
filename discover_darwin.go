//go:build darwin

package main

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"blkbrew/device"
)

func discoverDevices() ([]deviceInfo, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}
	mounts := mountedDevices()

	infos := []deviceInfo{}
	for _, e := range entries {
		name := e.Name()
		// Raw nodes mirror the buffered ones; list each disk once.
		if !strings.HasPrefix(name, "disk") {
			continue
		}
		path := filepath.Join("/dev", name)
		if isDarwinPartition(name) {
			reason := "partition"
			if mnt, ok := mounts[path]; ok {
				reason += ", mounted on " + mnt
			}
			infos = append(infos, deviceInfo{Path: path, Reason: reason})
			continue
		}
		info := deviceInfo{Path: path, Compatible: true, Type: "Disk"}
		if size, _, err := device.Probe(path); err == nil {
			info.SizeByte = size
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// mountedDevices maps device nodes to their mount points.
func mountedDevices() map[string]string {
	out := make(map[string]string)
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil || n <= 0 {
		return out
	}
	buf := make([]unix.Statfs_t, n)
	if _, err := unix.Getfsstat(buf, unix.MNT_NOWAIT); err != nil {
		return out
	}
	for _, st := range buf {
		from := unix.ByteSliceToString(st.Mntfromname[:])
		on := unix.ByteSliceToString(st.Mntonname[:])
		out[from] = filepath.Clean(on)
	}
	return out
}
