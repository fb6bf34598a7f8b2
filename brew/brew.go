// Package brew drives a capacity check: stamp a block range, reset the
// device, read the range back and classify every sector.
package brew

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"blkbrew/device"
	"blkbrew/stamp"
)

// ErrInterrupted is returned by Run after Stop.
var ErrInterrupted = errors.New("interrupted")

// Pass is one sweep over the block range.
type Pass int

const (
	PassWrite Pass = iota
	PassRead
)

func (p Pass) String() string {
	if p == PassWrite {
		return "write"
	}
	return "read"
}

// State is the position of a run in its lifecycle.
type State int

const (
	Idle State = iota
	Writing
	Resetting
	Reading
	Done
	Failed
)

var stateNames = [...]string{
	Idle:      "idle",
	Writing:   "writing",
	Resetting: "resetting",
	Reading:   "reading",
	Done:      "done",
	Failed:    "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state-%d", int(s))
	}
	return stateNames[s]
}

// Params selects what a run does.
type Params struct {
	Range BlockRange
	Write bool
	Read  bool
}

// SectorRecord describes one sector that did not read back intact.
type SectorRecord struct {
	Block uint64
	// Expected is the byte offset the sector was stamped with.
	Expected uint64
	// Found is the offset in the sector header; meaningful when
	// Outcome.HasFound().
	Found      uint64
	Outcome    stamp.Outcome
	Mismatches int
}

// Reporter receives progress from a run. Calls are made from the goroutine
// running Run, in order.
type Reporter interface {
	PassStarted(p Pass, r BlockRange)
	// BlockDone is called once per block; err is the transfer error, if any.
	BlockDone(p Pass, block uint64, err error)
	Sector(rec SectorRecord)
	PassFinished(p Pass, r BlockRange)
}

// Result summarises a run.
type Result struct {
	State  State
	Range  BlockRange
	Counts [stamp.NumOutcomes]uint64
	// Bit i stands for block Range.First+i.
	WriteFailures *bitset.BitSet
	ReadFailures  *bitset.BitSet
}

// Count returns the number of sectors classified as o.
func (r *Result) Count(o stamp.Outcome) uint64 {
	return r.Counts[o]
}

// Sectors returns the number of sectors classified.
func (r *Result) Sectors() uint64 {
	var n uint64
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Brewer runs one check against one device.
type Brewer struct {
	dev device.Device
	rep Reporter
	log *zap.Logger

	state    State
	stopChan chan struct{}
	once     sync.Once
}

// New returns a Brewer in the Idle state. A nil logger discards output.
func New(dev device.Device, rep Reporter, log *zap.Logger) *Brewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Brewer{
		dev:      dev,
		rep:      rep,
		log:      log,
		state:    Idle,
		stopChan: make(chan struct{}),
	}
}

// State returns the current state.
func (b *Brewer) State() State { return b.state }

// Stop asks a running pass to end after the current block. It may be
// called from any goroutine, any number of times.
func (b *Brewer) Stop() {
	b.once.Do(func() { close(b.stopChan) })
}

func (b *Brewer) stopped() bool {
	select {
	case <-b.stopChan:
		return true
	default:
		return false
	}
}

// Run executes p. A reset failure or an interruption ends the run in
// Failed and is returned; per-block I/O errors are only recorded.
func (b *Brewer) Run(p Params) (*Result, error) {
	if b.state != Idle {
		return nil, fmt.Errorf("brewer already ran (%s)", b.state)
	}

	r, err := ClampRange(p.Range, b.dev)
	if err != nil {
		b.state = Failed
		return nil, err
	}

	res := &Result{
		Range:         r,
		WriteFailures: bitset.New(0),
		ReadFailures:  bitset.New(0),
	}

	if p.Write {
		b.state = Writing
		if err := b.writePass(r, res); err != nil {
			return b.fail(res, err)
		}
	}

	if p.Write && p.Read {
		b.state = Resetting
		b.log.Debug("resetting device")
		if err := b.dev.Reset(); err != nil {
			b.log.Error("reset failed", zap.Error(err))
			return b.fail(res, err)
		}
	}

	if p.Read {
		b.state = Reading
		if err := b.readPass(r, res); err != nil {
			return b.fail(res, err)
		}
	}

	b.state = Done
	res.State = Done
	return res, nil
}

func (b *Brewer) fail(res *Result, err error) (*Result, error) {
	b.state = Failed
	res.State = Failed
	return res, err
}

func (b *Brewer) writePass(r BlockRange, res *Result) error {
	order := b.dev.BlockOrder()
	buf := device.AlignedBlock(order)
	offset := r.First << order

	b.rep.PassStarted(PassWrite, r)
	for block := r.First; ; block++ {
		if b.stopped() {
			return ErrInterrupted
		}

		offset = stamp.Fill(buf, offset)
		err := b.dev.WriteBlock(buf, block)
		if err != nil {
			b.log.Warn("write failed", zap.Uint64("block", block), zap.Error(err))
			res.WriteFailures.Set(uint(block - r.First))
		}
		b.rep.BlockDone(PassWrite, block, err)

		if block == r.Last {
			break
		}
	}
	b.rep.PassFinished(PassWrite, r)
	return nil
}

func (b *Brewer) readPass(r BlockRange, res *Result) error {
	order := b.dev.BlockOrder()
	buf := device.AlignedBlock(order)
	expected := r.First << order

	b.rep.PassStarted(PassRead, r)
	for block := r.First; ; block++ {
		if b.stopped() {
			return ErrInterrupted
		}

		err := b.dev.ReadBlock(buf, block)
		if err != nil {
			b.log.Warn("read failed", zap.Uint64("block", block), zap.Error(err))
			res.ReadFailures.Set(uint(block - r.First))
			expected += uint64(len(buf))
		} else {
			expected = b.validateBlock(block, buf, expected, res)
		}
		b.rep.BlockDone(PassRead, block, err)

		if block == r.Last {
			break
		}
	}
	b.rep.PassFinished(PassRead, r)
	return nil
}

// validateBlock classifies every sector of buf and returns the offset the
// next block is expected to start with.
func (b *Brewer) validateBlock(block uint64, buf []byte, expected uint64, res *Result) uint64 {
	for s := 0; s < len(buf); s += stamp.SectorSize {
		v := stamp.Validate(expected, buf[s:s+stamp.SectorSize])
		res.Counts[v.Outcome]++
		if v.Outcome != stamp.Good {
			b.rep.Sector(SectorRecord{
				Block:      block,
				Expected:   v.Expected,
				Found:      v.Found,
				Outcome:    v.Outcome,
				Mismatches: v.Mismatches,
			})
		}
		expected += stamp.SectorSize
	}
	return expected
}
