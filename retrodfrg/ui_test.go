package retrodfrg

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimUI(t *testing.T, w, h int) (*UI, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	u, err := NewUIWithScreen(s)
	require.NoError(t, err)
	s.SetSize(w, h)
	t.Cleanup(u.Close)
	return u, s
}

func screenRow(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func TestLayoutAndDraw(t *testing.T) {
	u, s := newSimUI(t, 40, 20)
	u.SetTitle(" blkbrew ")
	u.SetSummaryLines([]string{"Device: /dev/sdz"})
	u.SetLegend([]string{"Legend: # bad"})
	u.SetProgressMap([]string{"..##"})
	u.SetGlyphStyle('#', tcell.StyleDefault.Foreground(tcell.ColorRed))
	u.SetPhases([]string{"Write", "Reset", "Read"})
	u.SetPhaseDone("write")
	u.SetStatusLines([]string{"Block 0x3"})
	u.LayoutAndDraw()

	assert.Contains(t, screenRow(s, 0), "blkbrew")
	assert.Equal(t, "Device: /dev/sdz", screenRow(s, 1))
	assert.Equal(t, "Legend: # bad", screenRow(s, 2))
	assert.Equal(t, "..##", screenRow(s, 3))
	assert.Contains(t, screenRow(s, 4), "Phase")
	assert.Equal(t, "[✓]Write [ ]Reset [ ]Read", screenRow(s, 5))
	assert.Contains(t, screenRow(s, 6), "Status")
	assert.Equal(t, "Block 0x3", screenRow(s, 7))

	_, _, st, _ := s.GetContent(2, 3)
	fg, _, _ := st.Decompose()
	assert.Equal(t, tcell.ColorRed, fg)
}

func TestMapArea(t *testing.T) {
	u, _ := newSimUI(t, 50, 30)
	u.SetTitle("t")
	u.SetSummaryLines([]string{"a", "b"})
	u.SetLegend([]string{"c"})

	w, rows := u.MapArea()
	assert.Equal(t, 50, w)
	assert.Equal(t, 30-4-7, rows)
}

func TestRequestStopFromKey(t *testing.T) {
	u, s := newSimUI(t, 20, 10)
	assert.False(t, u.IsStopped())

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case <-u.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("q did not request a stop")
	}
	assert.True(t, u.IsStopped())
	u.RequestStop()
}

func TestMapLines(t *testing.T) {
	glyph := func(i int) rune { return rune('a' + i%26) }

	assert.Equal(t, []string{"abcd", "ef"}, MapLines(6, 0, 4, 3, glyph))
	assert.Nil(t, MapLines(0, 0, 4, 3, glyph))

	// 10 cells in a 2x2 window: the focus stays on the last visible cell.
	assert.Equal(t, []string{"de", "fg"}, MapLines(10, 6, 2, 2, glyph))
	assert.Equal(t, []string{"gh", "ij"}, MapLines(10, 9, 2, 2, glyph))
	assert.Equal(t, []string{"ab", "cd"}, MapLines(10, 1, 2, 2, glyph))
}
