package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"

	"blkbrew/brew"
	"blkbrew/device"
	"blkbrew/stamp"
)

func TestPrintSummary(t *testing.T) {
	res := &brew.Result{
		State:         brew.Done,
		Range:         brew.BlockRange{First: 0, Last: 2047},
		WriteFailures: bitset.New(0),
		ReadFailures:  bitset.New(0).Set(7),
	}
	res.Counts[stamp.Good] = 1024
	res.Counts[stamp.Overwritten] = 1023

	st := device.PerfStats{
		WriteCount: 2048, WriteTime: time.Second,
		ResetCount: 1, ResetTime: 1500 * time.Millisecond,
		ReadCount: 2048, ReadTime: 2 * time.Second,
	}

	var out bytes.Buffer
	printSummary(&out, res, st, 9)
	s := out.String()

	assert.Contains(t, s, "Summary for blocks 0x0 to 0x7ff (2048 blocks of 512 bytes):")
	assert.Regexp(t, `Good:\s+1024 sectors  512K`, s)
	assert.Regexp(t, `Overwritten:\s+1023 sectors`, s)
	assert.Regexp(t, `Read failures:\s+1 blocks`, s)
	assert.NotContains(t, s, "Write failures")
	assert.Contains(t, s, "Write: 2048 blocks in 1s (1M/s)")
	assert.Contains(t, s, "Reset: 1.5s")
	assert.Contains(t, s, "Read:  2048 blocks in 2s (512K/s)")
}

func TestRateAndHuman(t *testing.T) {
	assert.Equal(t, "-", rate(100, 0))
	assert.Equal(t, "2K/s", rate(2048, time.Second))
	assert.Equal(t, "100B", human(100))
	assert.Equal(t, "3M", human(3<<20))
}
