package device

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDevice struct {
	resetErr error
	reads    int
	writes   int
}

func (s *stubDevice) BlockOrder() int                { return 9 }
func (s *stubDevice) SizeByte() uint64               { return 1 << 20 }
func (s *stubDevice) ReadBlock([]byte, uint64) error { s.reads++; return nil }
func (s *stubDevice) WriteBlock([]byte, uint64) error {
	s.writes++
	return errors.New("media error")
}
func (s *stubDevice) Reset() error { return s.resetErr }
func (s *stubDevice) Close() error { return nil }

func TestPerfDevice_CountsAndTimes(t *testing.T) {
	stub := &stubDevice{resetErr: errors.New("stuck")}
	p := NewPerfDevice(stub)

	clock := time.Unix(0, 0)
	p.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	buf := make([]byte, 512)
	require.NoError(t, p.ReadBlock(buf, 0))
	require.NoError(t, p.ReadBlock(buf, 1))
	assert.Error(t, p.WriteBlock(buf, 0))
	assert.EqualError(t, p.Reset(), "stuck")

	st := p.Stats()
	assert.Equal(t, uint64(2), st.ReadCount)
	assert.Equal(t, 2*time.Millisecond, st.ReadTime)
	assert.Equal(t, uint64(1), st.WriteCount)
	assert.Equal(t, time.Millisecond, st.WriteTime)
	assert.Equal(t, uint64(1), st.ResetCount)
	assert.Equal(t, time.Millisecond, st.ResetTime)

	assert.Equal(t, 2, stub.reads)
	assert.Equal(t, 1, stub.writes)
	assert.Same(t, stub, p.Unwrap())
	assert.Equal(t, 9, p.BlockOrder())
}
