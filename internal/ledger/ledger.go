// Package ledger keeps the known-elements set and classifies resolution
// outcomes into audio cues.
//
// Membership is checked when a result returns, not when its request was
// issued, so concurrent requests racing to produce the same new symbol yield
// exactly one discovery.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/sound"
)

// Persister receives every change to the known-elements list.
// *store.Store satisfies this interface.
type Persister interface {
	PutElement(ctx context.Context, e ir.Element) error
	MergeElement(ctx context.Context, e ir.Element) (bool, error)
}

// Loader supplies the persisted list at startup.
type Loader interface {
	LoadElements(ctx context.Context) ([]ir.Element, error)
}

// Seed is the initial known-elements list used when storage is empty.
func Seed() []ir.Element {
	return []ir.Element{
		{Symbol: "Earth", Glyph: "\U0001F30D"},
		{Symbol: "Water", Glyph: "\U0001F4A7"},
		{Symbol: "Fire", Glyph: "\U0001F525"},
		{Symbol: "Wind", Glyph: "\U0001F32C\uFE0F"},
	}
}

// Classify returns the cue for a resolved element. It is a pure function of
// whether the symbol was already known process-wide and whether it is
// currently visible on the canvas.
func Classify(globallyKnown, sessionVisible bool) sound.Kind {
	switch {
	case !globallyKnown:
		return sound.Discovery
	case !sessionVisible:
		return sound.New
	default:
		return sound.Plop
	}
}

// Outcome is the result of observing a resolved element.
type Outcome struct {
	// Element is the element as recorded in the ledger.
	Element ir.Element
	// Cue is the classification of the observation.
	Cue sound.Kind
	// Added is true when the symbol was not known before.
	Added bool
}

// Ledger is the known-elements set, in first-seen order.
//
// Thread-safety: Ledger is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	index   map[string]int
	elems   []ir.Element
	persist Persister
}

// New creates an empty ledger. A nil persister keeps it memory-only.
func New(p Persister) *Ledger {
	return &Ledger{
		index:   make(map[string]int),
		persist: p,
	}
}

// Load fills the ledger from storage. When storage holds no elements, seed is
// recorded instead and persisted.
func (l *Ledger) Load(ctx context.Context, src Loader, seed []ir.Element) error {
	var elems []ir.Element
	if src != nil {
		var err error
		elems, err = src.LoadElements(ctx)
		if err != nil {
			return fmt.Errorf("load elements: %w", err)
		}
	}

	if len(elems) > 0 {
		l.mu.Lock()
		for _, e := range elems {
			l.appendLocked(e)
		}
		l.mu.Unlock()
		return nil
	}

	for _, e := range seed {
		e.Symbol = ir.Normalize(e.Symbol)
		e.IsDiscovery = false
		if !e.Valid() {
			continue
		}
		l.mu.Lock()
		_, known := l.index[e.Symbol]
		if !known {
			l.appendLocked(e)
		}
		l.mu.Unlock()
		if known || l.persist == nil {
			continue
		}
		if err := l.persist.PutElement(ctx, e); err != nil {
			return fmt.Errorf("persist seed %q: %w", e.Symbol, err)
		}
	}
	return nil
}

// Known reports whether symbol is in the known-elements set.
func (l *Ledger) Known(symbol string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[ir.Normalize(symbol)]
	return ok
}

// Get returns the recorded element for symbol.
func (l *Ledger) Get(symbol string) (ir.Element, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[ir.Normalize(symbol)]
	if !ok {
		return ir.Element{}, false
	}
	return l.elems[i], true
}

// Observe records a resolved element and classifies it.
//
// An unknown symbol is appended with IsDiscovery set and stamped with at.
// A known symbol keeps its history but takes the new glyph.
// The ledger is updated even when persistence fails; the error is returned.
func (l *Ledger) Observe(ctx context.Context, e ir.Element, visible bool, at time.Time) (Outcome, error) {
	if e.IsTombstone() {
		return Outcome{Element: e, Cue: sound.Failure}, nil
	}
	e.Symbol = ir.Normalize(e.Symbol)

	l.mu.Lock()
	i, known := l.index[e.Symbol]
	var rec ir.Element
	changed := true
	if known {
		rec = l.elems[i]
		if rec.Glyph == e.Glyph {
			changed = false
		} else {
			rec.Glyph = e.Glyph
			l.elems[i] = rec
		}
	} else {
		rec = ir.Element{
			Symbol:      e.Symbol,
			Glyph:       e.Glyph,
			IsDiscovery: true,
			CreatedAt:   at.UnixMilli(),
		}
		l.appendLocked(rec)
	}
	l.mu.Unlock()

	out := Outcome{Element: rec, Cue: Classify(known, visible), Added: !known}
	if !changed || l.persist == nil {
		return out, nil
	}
	if err := l.persist.PutElement(ctx, rec); err != nil {
		return out, fmt.Errorf("persist element %q: %w", rec.Symbol, err)
	}
	return out, nil
}

// Merge adds e only if its symbol is unknown. Resident entries win and
// imported entries never carry the discovery flag.
// Returns true if e was added.
func (l *Ledger) Merge(ctx context.Context, e ir.Element) (bool, error) {
	e.Symbol = ir.Normalize(e.Symbol)
	e.IsDiscovery = false
	if !e.Valid() {
		return false, fmt.Errorf("merge element: symbol and glyph are required")
	}

	l.mu.Lock()
	if _, ok := l.index[e.Symbol]; ok {
		l.mu.Unlock()
		return false, nil
	}
	l.appendLocked(e)
	l.mu.Unlock()

	if l.persist == nil {
		return true, nil
	}
	if _, err := l.persist.MergeElement(ctx, e); err != nil {
		return true, fmt.Errorf("persist merge %q: %w", e.Symbol, err)
	}
	return true, nil
}

// Elements returns a copy of the known elements in first-seen order.
func (l *Ledger) Elements() []ir.Element {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ir.Element, len(l.elems))
	copy(out, l.elems)
	return out
}

// Len returns the number of known elements.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.elems)
}

func (l *Ledger) appendLocked(e ir.Element) {
	if i, ok := l.index[e.Symbol]; ok {
		l.elems[i] = e
		return
	}
	l.index[e.Symbol] = len(l.elems)
	l.elems = append(l.elems, e)
}
