package device

import "fmt"

// Geometry describes an emulated drive: RealSizeByte bytes of actual
// storage presented as FakeSizeByte, with addresses aliasing every
// 2^WrapExponent bytes.
type Geometry struct {
	RealSizeByte uint64
	FakeSizeByte uint64
	WrapExponent int
	// BlockOrder 0 selects one sector per block.
	BlockOrder int
}

// EffectiveBlockOrder resolves a zero block order.
func (g Geometry) EffectiveBlockOrder() int {
	if g.BlockOrder == 0 {
		return MinBlockOrder
	}
	return g.BlockOrder
}

// Validate returns a *ConfigError describing the first violated constraint.
func (g Geometry) Validate() error {
	switch {
	case g.RealSizeByte == 0:
		return &ConfigError{Param: "real size", Reason: "must be greater than zero"}
	case g.FakeSizeByte < g.RealSizeByte:
		return &ConfigError{
			Param:  "fake size",
			Reason: fmt.Sprintf("%d is smaller than the real size %d", g.FakeSizeByte, g.RealSizeByte),
		}
	case g.WrapExponent < 0 || g.WrapExponent > 63:
		return &ConfigError{Param: "wrap", Reason: fmt.Sprintf("%d is outside [0, 63]", g.WrapExponent)}
	case !ValidBlockOrder(g.BlockOrder):
		return &ConfigError{
			Param:  "block order",
			Reason: fmt.Sprintf("%d is neither 0 nor in [%d, %d]", g.BlockOrder, MinBlockOrder, MaxBlockOrder),
		}
	}

	blockSize := uint64(1) << g.EffectiveBlockOrder()
	if g.RealSizeByte%blockSize != 0 || g.FakeSizeByte%blockSize != 0 {
		return &ConfigError{
			Param:  "size",
			Reason: fmt.Sprintf("real and fake sizes must be multiples of the block size %d", blockSize),
		}
	}

	// A drive that is not lying about its size must not alias either.
	if g.RealSizeByte == g.FakeSizeByte && g.FakeSizeByte-1 > g.addressMask() {
		return &ConfigError{
			Param:  "wrap",
			Reason: fmt.Sprintf("2^%d is smaller than the size of a good drive", g.WrapExponent),
		}
	}

	return nil
}

func (g Geometry) addressMask() uint64 {
	return (uint64(1) << g.WrapExponent) - 1
}

// physical maps a logical byte offset onto the backing storage.
func (g Geometry) physical(logical uint64) uint64 {
	p := logical & g.addressMask()
	if p >= g.RealSizeByte {
		p %= g.RealSizeByte
	}
	return p
}
