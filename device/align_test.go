package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignedBlock(t *testing.T) {
	for order := MinBlockOrder; order <= MaxBlockOrder; order++ {
		buf := AlignedBlock(order)
		assert.Len(t, buf, 1<<order)
		assert.Equal(t, 1<<order, cap(buf))
		assert.True(t, IsAligned(buf, order), "order %d", order)
	}
}

func TestIsAligned(t *testing.T) {
	buf := AlignedBlock(12)
	assert.False(t, IsAligned(buf[1:], 12))
	assert.True(t, IsAligned(buf[512:], 9))
	assert.False(t, IsAligned(nil, 9))
}

func TestIlog2(t *testing.T) {
	n, ok := ilog2(4096)
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ilog2(3000)
	assert.False(t, ok)
	_, ok = ilog2(0)
	assert.False(t, ok)
}
