package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"blkbrew/brew"
	"blkbrew/config"
	"blkbrew/retrodfrg"
	"blkbrew/stamp"
)

// cellState is what a map cell shows. Higher states win when several blocks
// share a cell, so damage stays visible on large devices.
type cellState uint8

const (
	cellPending cellState = iota
	cellWritten
	cellGood
	cellChanged
	cellOverwritten
	cellBad
	cellFailed
)

var cellGlyphs = [...]rune{
	cellPending:     '░',
	cellWritten:     '▒',
	cellGood:        '█',
	cellChanged:     '▓',
	cellOverwritten: 'O',
	cellBad:         'X',
	cellFailed:      '!',
}

// Upper bound on tracked cells; larger ranges share cells between blocks.
const maxCells = 1 << 20

func outcomeCell(o stamp.Outcome) cellState {
	switch o {
	case stamp.Good:
		return cellGood
	case stamp.Changed:
		return cellChanged
	case stamp.Overwritten, stamp.OverwrittenAndChanged:
		return cellOverwritten
	default:
		return cellBad
	}
}

// progressTracker keeps the per-block state shown in the block map.
type progressTracker struct {
	rng       brew.BlockRange
	perCell   uint64
	cells     []cellState
	done      uint64
	currentAt uint64
}

func newProgressTracker(r brew.BlockRange) *progressTracker {
	n := r.Len()
	per := (n + maxCells - 1) / maxCells
	if per == 0 {
		per = 1
	}
	return &progressTracker{
		rng:     r,
		perCell: per,
		cells:   make([]cellState, (n+per-1)/per),
	}
}

func (pt *progressTracker) cell(block uint64) int {
	return int((block - pt.rng.First) / pt.perCell)
}

func (pt *progressTracker) mark(block uint64, st cellState) {
	if block < pt.rng.First || block > pt.rng.Last {
		return
	}
	i := pt.cell(block)
	if st > pt.cells[i] {
		pt.cells[i] = st
	}
	pt.currentAt = block
}

// startPass resets the progress counters, keeping the map.
func (pt *progressTracker) startPass() {
	pt.done = 0
	pt.currentAt = pt.rng.First
}

// uiReporter drives the fullscreen block map.
type uiReporter struct {
	ui      *retrodfrg.UI
	pt      *progressTracker
	cfg     *config.Config
	order   int
	op      string
	started time.Time

	damaged  [stamp.NumOutcomes]uint64
	ioErrors uint64

	lastDraw time.Time
	now      func() time.Time
}

func newUIReporter(ui *retrodfrg.UI, desc string, blockOrder int, cfg *config.Config) *uiReporter {
	ui.SetTitle(" blkbrew ")
	ui.SetSummaryLines([]string{desc})
	ui.SetLegend([]string{
		fmt.Sprintf("Legend:  %c pending  %c written  %c good  %c changed  %c overwritten  %c bad  %c I/O error | Q to quit",
			cellGlyphs[cellPending], cellGlyphs[cellWritten], cellGlyphs[cellGood], cellGlyphs[cellChanged],
			cellGlyphs[cellOverwritten], cellGlyphs[cellBad], cellGlyphs[cellFailed]),
	})
	ui.SetGlyphStyle(cellGlyphs[cellGood], tcell.StyleDefault.Foreground(tcell.ColorGreen))
	ui.SetGlyphStyle(cellGlyphs[cellChanged], tcell.StyleDefault.Foreground(tcell.ColorYellow))
	ui.SetGlyphStyle(cellGlyphs[cellOverwritten], tcell.StyleDefault.Foreground(tcell.ColorFuchsia))
	ui.SetGlyphStyle(cellGlyphs[cellBad], tcell.StyleDefault.Foreground(tcell.ColorRed))
	ui.SetGlyphStyle(cellGlyphs[cellFailed], tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))

	var phases []string
	if cfg.Write {
		phases = append(phases, "Write")
	}
	if cfg.Write && cfg.Read {
		phases = append(phases, "Reset")
	}
	if cfg.Read {
		phases = append(phases, "Read")
	}
	ui.SetPhases(phases)

	return &uiReporter{ui: ui, cfg: cfg, order: blockOrder, now: time.Now}
}

func (r *uiReporter) PassStarted(p brew.Pass, br brew.BlockRange) {
	if r.pt == nil {
		r.pt = newProgressTracker(br)
	}
	r.pt.startPass()
	r.started = r.now()
	r.op = "Writing"
	if p == brew.PassRead {
		r.op = "Reading"
		if r.cfg.Write {
			r.ui.SetPhaseDone("reset")
		}
	}
	r.draw()
}

func (r *uiReporter) BlockDone(p brew.Pass, block uint64, err error) {
	switch {
	case err != nil:
		r.ioErrors++
		r.pt.mark(block, cellFailed)
	case p == brew.PassWrite:
		r.pt.mark(block, cellWritten)
	default:
		r.pt.mark(block, cellGood)
	}
	r.pt.done++

	if now := r.now(); now.Sub(r.lastDraw) >= 100*time.Millisecond {
		r.draw()
	}
}

func (r *uiReporter) Sector(rec brew.SectorRecord) {
	r.damaged[rec.Outcome]++
	r.pt.mark(rec.Block, outcomeCell(rec.Outcome))
}

func (r *uiReporter) PassFinished(p brew.Pass, _ brew.BlockRange) {
	if p == brew.PassWrite {
		r.ui.SetPhaseDone("write")
	} else {
		r.ui.SetPhaseDone("read")
	}
	r.op = "Done"
	r.draw()
}

func (r *uiReporter) draw() {
	r.lastDraw = r.now()
	if w, rows := r.ui.MapArea(); w > 0 && r.pt != nil {
		r.ui.SetProgressMap(retrodfrg.MapLines(len(r.pt.cells), r.pt.cell(r.pt.currentAt), w, rows,
			func(i int) rune { return cellGlyphs[r.pt.cells[i]] }))
	}
	r.ui.SetStatusLines(r.statusLines())
	r.ui.LayoutAndDraw()
}

// statusLines renders the current position, rate and damage counters.
func (r *uiReporter) statusLines() []string {
	if r.pt == nil {
		return nil
	}
	total := r.pt.rng.Len()
	elapsed := r.now().Sub(r.started).Truncate(time.Second)

	var rate float64
	if elapsed.Seconds() > 0 {
		rate = float64(r.pt.done<<r.order) / elapsed.Seconds()
	}
	etaStr := "-"
	if rate > 0 {
		remain := float64((total - r.pt.done) << r.order)
		etaStr = time.Duration(remain / rate * float64(time.Second)).Truncate(time.Second).String()
	}

	lines := []string{
		fmt.Sprintf("Block: 0x%x   Done: %d / %d blocks", r.pt.currentAt, r.pt.done, total),
		fmt.Sprintf("Elapsed: %s   Rate: %s/s   ETA: %s", elapsed, human(int64(rate)), etaStr),
		fmt.Sprintf("Changed: %d   Overwritten: %d   Bad: %d   I/O errors: %d",
			r.damaged[stamp.Changed],
			r.damaged[stamp.Overwritten]+r.damaged[stamp.OverwrittenAndChanged],
			r.damaged[stamp.BadMatching]+r.damaged[stamp.Bad],
			r.ioErrors),
		"Current op: " + r.op,
	}
	if r.pt.perCell > 1 {
		lines = append(lines, fmt.Sprintf("One cell stands for %d blocks", r.pt.perCell))
	}
	return lines
}
