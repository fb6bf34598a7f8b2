//go:build !linux && !darwin

package device

import "os"

func openDevice(string) (*os.File, error) {
	return nil, ErrUnsupportedPlatform
}

func probeDevice(*os.File) (uint64, int, error) {
	return 0, 0, ErrUnsupportedPlatform
}

func prepareReset(*BlockDevice) error { return nil }
