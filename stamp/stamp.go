// Package stamp generates and validates the self-describing sector pattern
// written to the device under test.
//
// Every 512-byte sector starts with its own logical byte offset followed by
// a chain of 64-bit words, each derived from the previous one. Nothing but
// the running offset is needed to produce or check a sector.
package stamp

import (
	"encoding/binary"
	"fmt"
)

const (
	// SectorSize is the stamping and validation granularity.
	SectorSize = 512

	// Tolerance is the largest number of corrupted filler words a sector may
	// carry and still be reported as changed rather than bad.
	Tolerance = 2

	headerSize = 8
	wordSize   = 8
)

// Next returns the word following prev in the filler chain.
func Next(prev uint64) uint64 {
	return prev*4294967311 + 17
}

// Fill stamps every sector of buf, starting at offset, and returns the
// offset of the sector that would follow buf. Chaining the returned value
// into the next call continues the sequence across blocks.
func Fill(buf []byte, offset uint64) uint64 {
	if len(buf)%SectorSize != 0 {
		panic(fmt.Sprintf("stamp: buffer size %d is not a multiple of %d", len(buf), SectorSize))
	}

	for s := 0; s < len(buf); s += SectorSize {
		sector := buf[s : s+SectorSize]
		binary.LittleEndian.PutUint64(sector, offset)
		rn := offset
		for p := headerSize; p < SectorSize; p += wordSize {
			rn = Next(rn)
			binary.LittleEndian.PutUint64(sector[p:], rn)
		}
		offset += SectorSize
	}

	return offset
}

// Result is the classification of one sector.
type Result struct {
	Outcome  Outcome
	Expected uint64
	Found    uint64
	// Mismatches stops counting once it exceeds Tolerance.
	Mismatches int
}

// Validate classifies sector against the offset it was expected to carry.
func Validate(expected uint64, sector []byte) Result {
	if len(sector) < SectorSize {
		panic(fmt.Sprintf("stamp: sector of %d bytes, want %d", len(sector), SectorSize))
	}

	found := binary.LittleEndian.Uint64(sector)
	rn := found
	mismatches := 0
	for p := headerSize; mismatches <= Tolerance && p < SectorSize; p += wordSize {
		rn = Next(rn)
		if rn != binary.LittleEndian.Uint64(sector[p:]) {
			mismatches++
		}
	}

	return Result{
		Outcome:    Classify(found == expected, mismatches),
		Expected:   expected,
		Found:      found,
		Mismatches: mismatches,
	}
}

// Classify maps a header comparison and a filler mismatch count onto an
// outcome.
func Classify(headerMatches bool, mismatches int) Outcome {
	switch {
	case headerMatches && mismatches == 0:
		return Good
	case headerMatches && mismatches <= Tolerance:
		return Changed
	case headerMatches:
		return BadMatching
	case mismatches == 0:
		return Overwritten
	case mismatches <= Tolerance:
		return OverwrittenAndChanged
	default:
		return Bad
	}
}
