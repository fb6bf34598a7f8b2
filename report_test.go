package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"blkbrew/brew"
	"blkbrew/stamp"
)

func TestTextReporter(t *testing.T) {
	var out bytes.Buffer
	r := newTextReporter(&out, false)

	r.PassStarted(brew.PassWrite, brew.BlockRange{First: 0, Last: 0x1f})
	r.BlockDone(brew.PassWrite, 0, nil)
	r.PassFinished(brew.PassWrite, brew.BlockRange{First: 0, Last: 0x1f})
	r.PassStarted(brew.PassRead, brew.BlockRange{First: 0, Last: 0x1f})
	r.Sector(brew.SectorRecord{Expected: 0x200, Outcome: stamp.Changed})
	r.Sector(brew.SectorRecord{Expected: 0x400, Outcome: stamp.BadMatching})
	r.Sector(brew.SectorRecord{Expected: 0x600, Found: 0x100600, Outcome: stamp.Overwritten})
	r.Sector(brew.SectorRecord{Expected: 0x800, Found: 0x100800, Outcome: stamp.OverwrittenAndChanged})
	r.Sector(brew.SectorRecord{Expected: 0xa00, Outcome: stamp.Bad})
	r.PassFinished(brew.PassRead, brew.BlockRange{First: 0, Last: 0x1f})

	assert.Equal(t, "Writing blocks from 0x0 to 0x1f... Done\n\n"+
		"Reading blocks from 0x0 to 0x1f..."+
		"Changed sector 0x200\n"+
		"BAD matching sector 0x400\n"+
		"Overwritten sector 0x600, found 0x100600\n"+
		"Overwritten and changed sector 0x800, found 0x100800\n"+
		" Done\n\n", out.String())
}

func TestTextReporter_ShowBad(t *testing.T) {
	var out bytes.Buffer
	r := newTextReporter(&out, true)

	r.Sector(brew.SectorRecord{Expected: 0xa00, Outcome: stamp.Bad})
	assert.Equal(t, "BAD sector 0xa00\n", out.String())
}
