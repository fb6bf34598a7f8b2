package main

import (
	"fmt"
	"io"

	"blkbrew/brew"
	"blkbrew/stamp"
)

// textReporter prints pass brackets and one line per damaged sector.
type textReporter struct {
	w       io.Writer
	showBad bool
}

func newTextReporter(w io.Writer, showBad bool) *textReporter {
	return &textReporter{w: w, showBad: showBad}
}

func (r *textReporter) PassStarted(p brew.Pass, br brew.BlockRange) {
	verb := "Writing"
	if p == brew.PassRead {
		verb = "Reading"
	}
	fmt.Fprintf(r.w, "%s blocks from 0x%x to 0x%x...", verb, br.First, br.Last)
}

func (r *textReporter) BlockDone(brew.Pass, uint64, error) {}

func (r *textReporter) PassFinished(brew.Pass, brew.BlockRange) {
	fmt.Fprint(r.w, " Done\n\n")
}

func (r *textReporter) Sector(rec brew.SectorRecord) {
	switch rec.Outcome {
	case stamp.Changed:
		fmt.Fprintf(r.w, "Changed sector 0x%x\n", rec.Expected)
	case stamp.BadMatching:
		fmt.Fprintf(r.w, "BAD matching sector 0x%x\n", rec.Expected)
	case stamp.Overwritten:
		fmt.Fprintf(r.w, "Overwritten sector 0x%x, found 0x%x\n", rec.Expected, rec.Found)
	case stamp.OverwrittenAndChanged:
		fmt.Fprintf(r.w, "Overwritten and changed sector 0x%x, found 0x%x\n", rec.Expected, rec.Found)
	case stamp.Bad:
		if r.showBad {
			fmt.Fprintf(r.w, "BAD sector 0x%x\n", rec.Expected)
		}
	}
}
