package device

import "time"

// PerfStats is a snapshot of the calls seen by a PerfDevice.
type PerfStats struct {
	ReadCount  uint64
	ReadTime   time.Duration
	WriteCount uint64
	WriteTime  time.Duration
	ResetCount uint64
	ResetTime  time.Duration
}

// PerfDevice measures every call it forwards to the wrapped device.
type PerfDevice struct {
	Device

	stats PerfStats
	now   func() time.Time
}

// NewPerfDevice wraps d.
func NewPerfDevice(d Device) *PerfDevice {
	return &PerfDevice{Device: d, now: time.Now}
}

func (p *PerfDevice) ReadBlock(buf []byte, block uint64) error {
	start := p.now()
	err := p.Device.ReadBlock(buf, block)
	p.stats.ReadCount++
	p.stats.ReadTime += p.now().Sub(start)
	return err
}

func (p *PerfDevice) WriteBlock(buf []byte, block uint64) error {
	start := p.now()
	err := p.Device.WriteBlock(buf, block)
	p.stats.WriteCount++
	p.stats.WriteTime += p.now().Sub(start)
	return err
}

func (p *PerfDevice) Reset() error {
	start := p.now()
	err := p.Device.Reset()
	p.stats.ResetCount++
	p.stats.ResetTime += p.now().Sub(start)
	return err
}

// Stats returns the counters accumulated so far.
func (p *PerfDevice) Stats() PerfStats {
	return p.stats
}

// Unwrap returns the measured device.
func (p *PerfDevice) Unwrap() Device {
	return p.Device
}
