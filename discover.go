package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"blkbrew/config"
	"blkbrew/device"
)

// Device discovery (read-only)
type deviceInfo struct {
	Path       string
	Compatible bool
	Reason     string

	Type     string
	SizeByte uint64
	Model    string
	// USB reports whether --reset-type=usb can work on the device.
	USB bool
}

func printDeviceList(w io.Writer, infos []deviceInfo, all bool) {
	fmt.Fprintf(w, "OS: %s\n", runtime.GOOS)
	fmt.Fprintln(w, "This is a SAFE, read-only listing. Nothing is written.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Whole-disk devices:")
	fmt.Fprintf(w, "  %-18s  %-14s  %-8s  %-4s  %s\n", "Path", "Type", "Size", "USB", "Model")
	printed := false
	for _, d := range infos {
		if !d.Compatible {
			continue
		}
		usb := "no"
		if d.USB {
			usb = "yes"
		}
		fmt.Fprintf(w, "  %-18s  %-14s  %-8s  %-4s  %s\n", d.Path, orDash(d.Type), sizeOrDash(d.SizeByte), usb, orDash(d.Model))
		printed = true
	}
	if !printed {
		fmt.Fprintln(w, "  <none detected>")
	}
	fmt.Fprintln(w)

	if all {
		fmt.Fprintln(w, "Not checked (partitions and others):")
		for _, d := range infos {
			if d.Compatible {
				continue
			}
			reason := d.Reason
			if strings.TrimSpace(reason) == "" {
				reason = "not a whole-disk device"
			}
			fmt.Fprintf(w, "  %s  (%s)\n", d.Path, reason)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Notes:")
	fmt.Fprintf(w, "  - --reset-type=%s needs a USB-backed device; %s works with any removable drive.\n",
		device.ResetUSB, device.ResetManualUSB)
	fmt.Fprintln(w, "  - Checking a device overwrites its content.")
}

func sizeOrDash(n uint64) string {
	if n == 0 {
		return "-"
	}
	return config.FormatSize(n)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func isWholeLinuxDevice(name string) bool {
	// sdX, vdX
	if len(name) == 3 && (strings.HasPrefix(name, "sd") || strings.HasPrefix(name, "vd")) && name[2] >= 'a' && name[2] <= 'z' {
		return true
	}
	// nvmeXnY
	if strings.HasPrefix(name, "nvme") && !strings.Contains(name, "p") {
		parts := strings.Split(strings.TrimPrefix(name, "nvme"), "n")
		if len(parts) == 2 && isDigits(parts[0]) && isDigits(parts[1]) {
			return true
		}
	}
	// mmcblkX
	if strings.HasPrefix(name, "mmcblk") && isDigits(strings.TrimPrefix(name, "mmcblk")) {
		return true
	}
	return false
}

func isPartitionLinux(name string) bool {
	// sdXN or vdXN: trailing digit(s)
	if (strings.HasPrefix(name, "sd") || strings.HasPrefix(name, "vd")) && len(name) >= 4 {
		if name[len(name)-1] >= '0' && name[len(name)-1] <= '9' {
			return true
		}
	}
	// nvmeXnYpZ
	if strings.HasPrefix(name, "nvme") && strings.Contains(name, "n") && strings.Contains(name, "p") {
		return true
	}
	// mmcblkXpZ
	if strings.HasPrefix(name, "mmcblk") && strings.Contains(name, "p") {
		return true
	}
	return false
}

// isDarwinPartition reports names like disk2s1 or rdisk3s2.
func isDarwinPartition(name string) bool {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == 's' && name[i+1] >= '0' && name[i+1] <= '9' {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
