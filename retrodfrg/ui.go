// Package retrodfrg provides a generic terminal UI for displaying progress and status information.
// It is designed to be completely agnostic of the underlying task being performed.
//
// The UI is not safe for concurrent use except for RequestStop, IsStopped
// and Done; one goroutine updates and draws it.
package retrodfrg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// UI provides a terminal-based user interface for displaying customizable information.
// It supports title, summary lines, legend, phases, and status lines.
type UI struct {
	s        tcell.Screen
	stopChan chan struct{}
	once     sync.Once

	// Customizable display
	title        string
	phases       []string
	phaseDoneMap map[string]bool
	summaryLines []string
	legendLines  []string
	statusLines  []string

	// Visual progress map (provided by caller, UI just renders it)
	progressMapLines []string
	glyphStyles      map[rune]tcell.Style
	restoreTerminal  bool
}

// NewUI creates and initializes a new UI instance.
// It sets up the terminal screen and starts the event loop for handling user input.
func NewUI() (*UI, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	u, err := NewUIWithScreen(s)
	if err != nil {
		return nil, err
	}
	u.restoreTerminal = true
	return u, nil
}

// NewUIWithScreen initializes s and builds a UI on top of it. Tests pass a
// tcell.SimulationScreen.
func NewUIWithScreen(s tcell.Screen) (*UI, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.DisableMouse()
	u := &UI{
		s:            s,
		stopChan:     make(chan struct{}),
		phaseDoneMap: make(map[string]bool),
		glyphStyles:  make(map[rune]tcell.Style),
	}
	u.eventLoop()
	return u, nil
}

// Close closes the UI and restores the terminal to its original state.
func (u *UI) Close() {
	if u.s == nil {
		return
	}
	u.s.Fini()
	u.s = nil
	if u.restoreTerminal {
		fmt.Print("\033[?1049l\033[?25h")
	}
}

// RequestStop signals that the user has requested to stop the current operation.
// It can be called multiple times safely.
func (u *UI) RequestStop() {
	u.once.Do(func() {
		close(u.stopChan)
		if u.s != nil {
			u.s.PostEvent(tcell.NewEventInterrupt(nil))
		}
	})
}

// Suspend hands the terminal back, e.g. to ask a question on stdin.
func (u *UI) Suspend() error {
	if u.s == nil {
		return nil
	}
	return u.s.Suspend()
}

// Resume takes the terminal over again after Suspend and redraws.
func (u *UI) Resume() error {
	if u.s == nil {
		return nil
	}
	if err := u.s.Resume(); err != nil {
		return err
	}
	u.LayoutAndDraw()
	return nil
}

// Done is closed once a stop has been requested.
func (u *UI) Done() <-chan struct{} {
	return u.stopChan
}

// IsStopped returns true if the user has requested to stop the operation.
func (u *UI) IsStopped() bool {
	select {
	case <-u.stopChan:
		return true
	default:
		return false
	}
}

// Size returns the current screen width and height.
func (u *UI) Size() (width, height int) {
	if u.s == nil {
		return 0, 0
	}
	return u.s.Size()
}

func putStr(s tcell.Screen, x, y int, str string) {
	putStyled(s, x, y, str, nil)
}

// putStyled draws str, picking each rune's style from styles when present.
func putStyled(s tcell.Screen, x, y int, str string, styles map[rune]tcell.Style) {
	w, _ := s.Size()
	runes := []rune(str)
	for i, r := range runes {
		pos := x + i
		if pos >= w {
			break // Don't write beyond screen width
		}
		st, ok := styles[r]
		if !ok {
			st = tcell.StyleDefault
		}
		s.SetContent(pos, y, r, nil, st)
	}
}

// LayoutAndDraw redraws the entire UI with the current state.
// It should be called whenever the displayed information needs to be updated.
func (u *UI) LayoutAndDraw() {
	if u.s == nil {
		return
	}
	u.s.Clear()
	w, h := u.s.Size()

	currentY := 0

	// Title
	if u.title != "" {
		putStr(u.s, 0, currentY, strings.Repeat("═", w))
		centerX := (w - len(u.title)) / 2
		putStr(u.s, centerX, currentY, u.title)
		currentY++
	}

	// Optional summary/info lines
	for _, line := range u.summaryLines {
		if currentY >= h {
			break
		}
		putStr(u.s, 0, currentY, line)
		currentY++
	}

	// Optional legend
	for _, line := range u.legendLines {
		if currentY >= h {
			break
		}
		putStr(u.s, 0, currentY, line)
		currentY++
	}

	// Progress map visualization (if provided)
	if len(u.progressMapLines) > 0 {
		// Compute available rows for progress map (leave room for phase+status: 7 lines)
		avail := h - currentY - 7
		if avail < 1 {
			avail = 1
		}
		rowsToShow := avail
		if rowsToShow > len(u.progressMapLines) {
			rowsToShow = len(u.progressMapLines)
		}
		for i := 0; i < rowsToShow && currentY < h; i++ {
			line := u.progressMapLines[i]
			// Truncate by rune count, not bytes
			runes := []rune(line)
			if len(runes) > w {
				runes = runes[:w]
			}
			putStyled(u.s, 0, currentY, string(runes), u.glyphStyles)
			currentY++
		}
	}

	// Phase line
	if len(u.phases) > 0 {
		putStr(u.s, 0, currentY, strings.Repeat("─", w))
		putStr(u.s, 2, currentY, " Phase ")
		currentY++
		check := func(ok bool) rune {
			if ok {
				return '✓'
			}
			return ' '
		}
		b := strings.Builder{}
		for i, p := range u.phases {
			if i > 0 {
				b.WriteByte(' ')
			}
			done := u.phaseDoneMap[strings.ToLower(p)]
			b.WriteString(fmt.Sprintf("[%c]%s", check(done), p))
		}
		putStr(u.s, 0, currentY, b.String())
		currentY++
	}

	// Status block
	if len(u.statusLines) > 0 {
		putStr(u.s, 0, currentY, strings.Repeat("─", w))
		putStr(u.s, 2, currentY, " Status ")
		currentY++
		for _, line := range u.statusLines {
			if currentY >= h {
				break
			}
			putStr(u.s, 0, currentY, line)
			currentY++
		}
	}

	u.s.Show()
}

// SetPhaseDone marks the specified phase as completed.
// The phase name is case-insensitive.
func (u *UI) SetPhaseDone(p string) {
	if u.phaseDoneMap == nil {
		u.phaseDoneMap = make(map[string]bool)
	}
	u.phaseDoneMap[strings.ToLower(p)] = true
}

// SetPhases sets the list of phases to display.
// Phases will be shown with checkmarks as they are marked done via SetPhaseDone.
func (u *UI) SetPhases(labels []string) {
	u.phases = append([]string(nil), labels...)
}

// SetGlyphStyle draws every occurrence of r in the progress map with st.
func (u *UI) SetGlyphStyle(r rune, st tcell.Style) {
	u.glyphStyles[r] = st
}

// MapArea returns the size available to the progress map below the
// title, summary and legend, keeping room for the phase and status blocks.
func (u *UI) MapArea() (width, rows int) {
	w, h := u.Size()
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	used := len(u.summaryLines) + len(u.legendLines)
	if u.title != "" {
		used++
	}
	rows = h - used - 7
	if rows < 1 {
		rows = 1
	}
	return w, rows
}

// SetTitle sets the title displayed at the top of the UI.
func (u *UI) SetTitle(t string) {
	u.title = t
}

// SetSummaryLines sets the summary/info lines displayed below the title.
func (u *UI) SetSummaryLines(lines []string) {
	u.summaryLines = append([]string(nil), lines...)
}

// SetLegend sets the legend lines displayed below the summary.
func (u *UI) SetLegend(lines []string) {
	u.legendLines = append([]string(nil), lines...)
}

// SetStatusLines sets the status lines displayed at the bottom of the UI.
func (u *UI) SetStatusLines(lines []string) {
	u.statusLines = append([]string(nil), lines...)
}

// SetProgressMap sets the visual progress map lines to display.
// Each string represents a row of the progress visualization.
// The UI simply renders what is provided - it does not track progress.
func (u *UI) SetProgressMap(lines []string) {
	u.progressMapLines = append([]string(nil), lines...)
}

func (u *UI) eventLoop() {
	s := u.s
	go func() {
		for {
			select {
			case <-u.stopChan:
				return
			default:
			}
			ev := s.PollEvent()
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyCtrlC:
					u.RequestStop()
				case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
					u.RequestStop()
				case ev.Key() == tcell.KeyEscape:
					u.RequestStop()
				}
			case *tcell.EventResize:
				s.Sync()
			case *tcell.EventInterrupt:
				return
			case nil:
				return
			}
		}
	}()
}
