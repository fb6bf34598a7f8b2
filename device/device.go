// Package device abstracts the block device under test.
//
// Two implementations exist: BlockDevice talks to real hardware, FileDevice
// emulates a counterfeit drive on top of a plain file so the fraud pattern
// can be reproduced without one.
package device

const (
	// MinBlockOrder and MaxBlockOrder bound an explicit block order.
	MinBlockOrder = 9
	MaxBlockOrder = 20
)

// Device is the capability set shared by real and emulated devices.
//
// Buffers passed to ReadBlock and WriteBlock must be exactly one block long;
// real devices additionally need them aligned, see AlignedBlock.
type Device interface {
	// BlockOrder returns log2 of the block size.
	BlockOrder() int
	// SizeByte returns the apparent size of the device.
	SizeByte() uint64
	ReadBlock(buf []byte, block uint64) error
	WriteBlock(buf []byte, block uint64) error
	// Reset makes the device drop any state cached on the write side.
	Reset() error
	Close() error
}

// BlockSize returns the block size of d in bytes.
func BlockSize(d Device) int {
	return 1 << d.BlockOrder()
}

// LastBlock returns the index of the last whole block of d. It reports
// false when d is smaller than a single block.
func LastBlock(d Device) (uint64, bool) {
	n := d.SizeByte() >> d.BlockOrder()
	if n == 0 {
		return 0, false
	}
	return n - 1, true
}

// ValidBlockOrder reports whether order is 0 (inherit) or within
// [MinBlockOrder, MaxBlockOrder].
func ValidBlockOrder(order int) bool {
	return order == 0 || (order >= MinBlockOrder && order <= MaxBlockOrder)
}

func checkBlock(d Device, op string, buf []byte, block uint64) error {
	size := uint64(BlockSize(d))
	if uint64(len(buf)) != size {
		return &IoError{Op: op, Block: block, Err: ErrBufferSize}
	}
	off := block << d.BlockOrder()
	if off>>d.BlockOrder() != block || off+size > d.SizeByte() || off+size < off {
		return &IoError{Op: op, Block: block, Err: ErrOutOfRange}
	}
	return nil
}
