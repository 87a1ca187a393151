package canvas

import (
	"github.com/roach88/elemental/internal/ir"
)

// Placement is an element positioned on the canvas. Placements are
// session-local and never persisted.
type Placement struct {
	Element ir.Element `json:"element"`
	X       int        `json:"x"`
	Y       int        `json:"y"`
}

// Model is the live, ordered set of placements.
// Insertion order is the only z-order: the first match wins every query.
//
// Model is not safe for concurrent use; the engine owns it on a single goroutine.
type Model struct {
	metrics    Metrics
	geom       Geometry
	width      int
	height     int
	placements []Placement
}

// New creates an empty canvas of zero size. Nothing fits until Resize is called.
func New(m Metrics, g Geometry) *Model {
	return &Model{metrics: m, geom: g}
}

// Metrics returns the text measurer boxes are computed with.
func (m *Model) Metrics() Metrics {
	return m.metrics
}

// Resize sets the full surface size, sidebar strip included.
func (m *Model) Resize(width, height int) {
	m.width, m.height = width, height
}

// Size returns the full surface size.
func (m *Model) Size() (width, height int) {
	return m.width, m.height
}

// Geometry returns the layout constants.
func (m *Model) Geometry() Geometry {
	return m.geom
}

// UsableWidth is the surface width left of the sidebar strip.
func (m *Model) UsableWidth() int {
	return m.width - m.geom.SidebarWidth
}

// Box returns the freshly computed bounding box of p.
func (m *Model) Box(p Placement) Box {
	return LabelBox(m.metrics, p.Element.Label(), p.X, p.Y, m.geom.Padding)
}

// Fits reports whether p's box ends left of the sidebar strip.
func (m *Model) Fits(p Placement) bool {
	b := m.Box(p)
	return b.X+b.W <= m.UsableWidth()
}

// OnCanvas reports whether the point lies on the usable surface.
func (m *Model) OnCanvas(x, y int) bool {
	return x >= 0 && x < m.UsableWidth() && y >= 0 && (m.height == 0 || y < m.height)
}

// Add appends p if it fits. A rejected placement is dropped silently.
func (m *Model) Add(p Placement) bool {
	if p.Element.IsTombstone() || !m.Fits(p) {
		return false
	}
	m.placements = append(m.placements, p)
	return true
}

// RemoveAt removes every placement matching pred and returns them.
func (m *Model) RemoveAt(pred func(Placement) bool) []Placement {
	var removed []Placement
	kept := m.placements[:0]
	for _, p := range m.placements {
		if pred(p) {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(m.placements); i++ {
		m.placements[i] = Placement{}
	}
	m.placements = kept
	return removed
}

// RemoveIndex removes the placement at index i.
func (m *Model) RemoveIndex(i int) (Placement, bool) {
	if i < 0 || i >= len(m.placements) {
		return Placement{}, false
	}
	p := m.placements[i]
	m.placements = append(m.placements[:i], m.placements[i+1:]...)
	return p, true
}

// FindOverlap returns the first placement whose box intersects candidate's.
func (m *Model) FindOverlap(candidate Placement) (int, Placement, bool) {
	cb := m.Box(candidate)
	for i, p := range m.placements {
		if m.Box(p).Overlaps(cb) {
			return i, p, true
		}
	}
	return -1, Placement{}, false
}

// HitTest returns the first placement whose box contains (px, py).
func (m *Model) HitTest(px, py int) (int, Placement, bool) {
	for i, p := range m.placements {
		if m.Box(p).Contains(px, py) {
			return i, p, true
		}
	}
	return -1, Placement{}, false
}

// Visible reports whether any placement carries symbol.
func (m *Model) Visible(symbol string) bool {
	for _, p := range m.placements {
		if p.Element.Symbol == symbol {
			return true
		}
	}
	return false
}

// Placements returns a copy of the placements in insertion order.
func (m *Model) Placements() []Placement {
	out := make([]Placement, len(m.placements))
	copy(out, m.placements)
	return out
}

// Len returns the number of placements.
func (m *Model) Len() int {
	return len(m.placements)
}

// IndexOf returns the index of the first placement equal to p.
func (m *Model) IndexOf(p Placement) int {
	for i, q := range m.placements {
		if q == p {
			return i
		}
	}
	return -1
}
