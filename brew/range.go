package brew

import (
	"fmt"

	"blkbrew/device"
)

// BlockRange is an inclusive range of block indexes.
type BlockRange struct {
	First uint64
	Last  uint64
}

// Len returns the number of blocks in r.
func (r BlockRange) Len() uint64 {
	return r.Last - r.First + 1
}

func (r BlockRange) String() string {
	return fmt.Sprintf("0x%x-0x%x", r.First, r.Last)
}

// ClampRange fits r onto dev. Ends past the last addressable block are
// pulled back to it.
func ClampRange(r BlockRange, dev device.Device) (BlockRange, error) {
	if r.First > r.Last {
		return BlockRange{}, &device.ConfigError{
			Param:  "range",
			Reason: fmt.Sprintf("first block 0x%x is past last block 0x%x", r.First, r.Last),
		}
	}

	last, ok := device.LastBlock(dev)
	if !ok {
		return BlockRange{}, &device.ConfigError{
			Param:  "range",
			Reason: fmt.Sprintf("device of %d bytes holds no %d byte block", dev.SizeByte(), device.BlockSize(dev)),
		}
	}

	return BlockRange{First: min(r.First, last), Last: min(r.Last, last)}, nil
}
