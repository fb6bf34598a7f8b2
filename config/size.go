package config

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// ParseSize parses a byte count with an optional binary suffix:
// b, k, m, g or t (an "ib" tail such as "GiB" is accepted too).
func ParseSize(s string) (uint64, error) {
	ss := strings.TrimSpace(strings.ToLower(s))
	ss = strings.TrimSuffix(ss, "ib")
	if ss == "" {
		return 0, fmt.Errorf("empty size")
	}

	shift := 0
	switch {
	case strings.HasSuffix(ss, "k"):
		shift = 10
	case strings.HasSuffix(ss, "m"):
		shift = 20
	case strings.HasSuffix(ss, "g"):
		shift = 30
	case strings.HasSuffix(ss, "t"):
		shift = 40
	case strings.HasSuffix(ss, "b"):
	default:
		v, err := strconv.ParseUint(ss, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("size %q: %w", s, err)
		}
		return v, nil
	}
	ss = strings.TrimSpace(ss[:len(ss)-1])

	if v, err := strconv.ParseUint(ss, 10, 64); err == nil {
		if hi, _ := bits.Mul64(v, 1<<shift); hi != 0 {
			return 0, fmt.Errorf("size %q overflows", s)
		}
		return v << shift, nil
	}
	v, err := strconv.ParseFloat(ss, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("size %q is not a number", s)
	}
	v *= float64(uint64(1) << shift)
	if v >= math.MaxUint64 {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return uint64(v), nil
}

// FormatSize renders n with the largest binary unit that divides it.
func FormatSize(n uint64) string {
	units := []struct {
		shift  int
		suffix string
	}{{40, "T"}, {30, "G"}, {20, "M"}, {10, "K"}}
	for _, u := range units {
		if n >= 1<<u.shift && n%(1<<u.shift) == 0 {
			return fmt.Sprintf("%d%s", n>>u.shift, u.suffix)
		}
	}
	return fmt.Sprintf("%dB", n)
}

// ParseBlock parses a block index in decimal or 0x-prefixed hex.
func ParseBlock(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("block %q: %w", s, err)
	}
	return v, nil
}
