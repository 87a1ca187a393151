package engine

import (
	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/pending"
)

// PendingLabel is drawn in place of a result that has not arrived.
const PendingLabel = "..."

// PlacementView is a placement as drawn.
type PlacementView struct {
	canvas.Placement
	Box canvas.Box
	// Untried is set while an element is held and no cache entry exists for
	// combining it with this placement.
	Untried bool
}

// PlaceholderView is an open placeholder as drawn.
type PlaceholderView struct {
	pending.Placeholder
	Box canvas.Box
}

// View is a consistent copy of everything a renderer needs.
type View struct {
	State        State
	Held         *ir.Element
	Pointer      canvas.Point
	Width        int
	Height       int
	Geometry     canvas.Geometry
	Placements   []PlacementView
	Placeholders []PlaceholderView
}

// Snapshot returns the current view. Safe from any goroutine.
func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, h := e.canvas.Size()
	v := View{
		State:    e.state,
		Pointer:  e.pointer,
		Width:    w,
		Height:   h,
		Geometry: e.canvas.Geometry(),
	}
	if e.held != nil {
		held := *e.held
		v.Held = &held
	}

	for _, p := range e.canvas.Placements() {
		pv := PlacementView{Placement: p, Box: e.canvas.Box(p)}
		if v.Held != nil {
			pv.Untried = !e.cache.HasCombine(ir.CombineKey(p.Element.Symbol, v.Held.Symbol))
		}
		v.Placements = append(v.Placements, pv)
	}

	for _, ph := range e.pending.List() {
		box := canvas.LabelBox(e.canvas.Metrics(), PendingLabel, ph.X, ph.Y, v.Geometry.Padding)
		v.Placeholders = append(v.Placeholders, PlaceholderView{Placeholder: ph, Box: box})
	}
	return v
}

// State returns the current interaction state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
