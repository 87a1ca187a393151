package canvas

import "github.com/mattn/go-runewidth"

// Extents are the rendered dimensions of a text run.
type Extents struct {
	Width   int
	Ascent  int
	Descent int
}

// Metrics measures rendered text. It is the rendering capability the canvas
// calls into; implementations must be deterministic for a given string.
type Metrics interface {
	Measure(text string) Extents
}

// GridMetrics measures text on a fixed-pitch grid. Width is the display
// width of the text in terminal cells scaled by CellWidth, so wide glyphs
// such as emoji count as two cells.
type GridMetrics struct {
	CellWidth int
	Ascent    int
	Descent   int
}

// CellMetrics measures in terminal cells: one cell per column, one row tall.
func CellMetrics() GridMetrics {
	return GridMetrics{CellWidth: 1, Ascent: 1}
}

// PixelMetrics approximates a 24px proportional font on a pixel canvas.
func PixelMetrics() GridMetrics {
	return GridMetrics{CellWidth: 12, Ascent: 18, Descent: 6}
}

// Measure implements Metrics.
func (m GridMetrics) Measure(text string) Extents {
	return Extents{
		Width:   runewidth.StringWidth(text) * m.CellWidth,
		Ascent:  m.Ascent,
		Descent: m.Descent,
	}
}
