package retrodfrg

import "strings"

// MapLines lays out n cells, one rune each, in rows of width w. When n does
// not fit into w*rows cells the window scrolls so that cell focus stays
// visible. glyph returns the rune of cell i.
func MapLines(n, focus, w, rows int, glyph func(i int) rune) []string {
	if n <= 0 || w <= 0 || rows <= 0 {
		return nil
	}
	total := w * rows

	// Scroll to follow the focused cell.
	start := 0
	if n > total {
		if focus >= total-1 {
			start = focus - (total - 1)
		}
		if start+total > n {
			start = n - total
		}
		if start < 0 {
			start = 0
		}
	}

	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		b.Grow(w)
		for col := 0; col < w; col++ {
			abs := start + row*w + col
			if abs >= n {
				break
			}
			b.WriteRune(glyph(abs))
		}
		if b.Len() == 0 {
			break
		}
		lines = append(lines, b.String())
	}
	return lines
}
