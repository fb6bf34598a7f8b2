//go:build linux

package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"blkbrew/device"
)

// Roots scanned by discovery, swapped out by tests.
var (
	sysBlockRoot = "/sys/class/block"
	devRoot      = "/dev"
)

func discoverDevices() ([]deviceInfo, error) {
	entries, err := os.ReadDir(sysBlockRoot)
	if err != nil {
		return nil, err
	}
	infos := []deviceInfo{}
	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(devRoot, name)
		sys := filepath.Join(sysBlockRoot, name)

		switch {
		case isWholeLinuxDevice(name) && !fileExists(filepath.Join(sys, "partition")):
			info := deviceInfo{Path: path, Compatible: true, Type: "Fixed Disk"}
			if readTrim(filepath.Join(sys, "removable")) == "1" {
				info.Type = "Removable Disk"
			}
			// sysfs counts 512-byte sectors whatever the logical block size.
			if n, err := strconv.ParseUint(readTrim(filepath.Join(sys, "size")), 10, 64); err == nil {
				info.SizeByte = n * 512
			} else if size, _, err := device.Probe(path); err == nil {
				info.SizeByte = size
			}
			info.Model = strings.TrimSpace(readTrim(filepath.Join(sys, "device", "vendor")) + " " +
				readTrim(filepath.Join(sys, "device", "model")))
			info.USB = device.IsUSBBacked(path)
			infos = append(infos, info)
		case isPartitionLinux(name) || fileExists(filepath.Join(sys, "partition")):
			infos = append(infos, deviceInfo{Path: path, Reason: "partition"})
		case strings.HasPrefix(name, "loop"):
			infos = append(infos, deviceInfo{Path: path, Reason: "loop device"})
		case strings.HasPrefix(name, "dm-"):
			infos = append(infos, deviceInfo{Path: path, Reason: "device mapper volume"})
		}
	}
	return infos, nil
}

func readTrim(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
