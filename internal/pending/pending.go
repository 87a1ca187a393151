// Package pending tracks placeholders for in-flight combine and split requests.
//
// A placeholder is opened when a resolution starts and closed exactly once when
// it finishes, whether it succeeded or failed. Closing is idempotent: closing
// an unknown or already-closed id is a no-op, so both a resolution callback and
// a cleanup path may attempt it.
package pending

import (
	"log/slog"
	"sync"
)

// Placeholder is a visual stand-in for a placement awaiting resolution.
type Placeholder struct {
	ID string
	X  int
	Y  int
}

// Tracker owns the set of open placeholders.
// Multiple placeholders may be open at once; each is independent.
//
// Thread-safety: Tracker is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	gen   IDGenerator
	open  map[string]Placeholder
	order []string
}

// NewTracker creates a tracker that draws ids from gen.
// A nil gen uses UUIDv7Generator.
func NewTracker(gen IDGenerator) *Tracker {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &Tracker{
		gen:  gen,
		open: make(map[string]Placeholder),
	}
}

// Begin registers a placeholder at (x, y) and returns its id.
// The caller renders the placeholder until End is called with the id.
func (t *Tracker) Begin(x, y int) string {
	id := t.gen.Generate()

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.open[id]; dup {
		// A generator that repeats ids would orphan the first placeholder.
		slog.Warn("placeholder id reused", "placeholder", id)
	} else {
		t.order = append(t.order, id)
	}
	t.open[id] = Placeholder{ID: id, X: x, Y: y}
	return id
}

// End removes the placeholder. Returns the removed placeholder and true, or
// false if id was unknown or already ended.
func (t *Tracker) End(id string) (Placeholder, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.open[id]
	if !ok {
		return Placeholder{}, false
	}
	delete(t.open, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return p, true
}

// List returns open placeholders in the order they were begun.
func (t *Tracker) List() []Placeholder {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Placeholder, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.open[id])
	}
	return out
}

// Len returns the number of open placeholders.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}
