//go:build !linux && !darwin

package main

import (
	"fmt"
	"runtime"
)

func discoverDevices() ([]deviceInfo, error) {
	return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
}
