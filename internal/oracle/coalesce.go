package oracle

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/elemental/internal/ir"
)

// Coalescing collapses identical in-flight requests into one backend call.
// Two simultaneous first-time combinations of the same pair share a single
// answer instead of both reaching the backend.
//
// The shared call runs with the first caller's context; a later caller whose
// context ends early still waits for the shared result.
type Coalescing struct {
	next  Oracle
	group singleflight.Group
}

// NewCoalescing wraps next.
func NewCoalescing(next Oracle) *Coalescing {
	return &Coalescing{next: next}
}

// Combine implements Oracle.
func (c *Coalescing) Combine(ctx context.Context, a, b string) (ir.Element, error) {
	id, err := ir.KeyID(ir.CombineKey(a, b))
	if err != nil {
		return ir.Element{}, err
	}
	v, err, shared := c.group.Do(id, func() (any, error) {
		return c.next.Combine(ctx, a, b)
	})
	if shared {
		coalescedTotal.WithLabelValues("combine").Inc()
	}
	if err != nil {
		return ir.Element{}, err
	}
	return v.(ir.Element), nil
}

// Split implements Oracle.
func (c *Coalescing) Split(ctx context.Context, symbol string) ([]ir.Element, error) {
	id, err := ir.KeyID(ir.SplitKey(symbol))
	if err != nil {
		return nil, err
	}
	v, err, shared := c.group.Do(id, func() (any, error) {
		return c.next.Split(ctx, symbol)
	})
	if shared {
		coalescedTotal.WithLabelValues("split").Inc()
	}
	if err != nil {
		return nil, err
	}
	// Callers own their slice.
	elems := v.([]ir.Element)
	out := make([]ir.Element, len(elems))
	copy(out, elems)
	return out, nil
}
