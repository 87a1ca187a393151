package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/store"
)

// Persister receives every cache mutation.
// *store.Store satisfies this interface.
type Persister interface {
	PutCombo(ctx context.Context, k ir.Key, result ir.Element) error
	PutSplit(ctx context.Context, k ir.Key, result ir.Pair) error
	MergeCombo(ctx context.Context, k ir.Key, result ir.Element) (bool, error)
	MergeSplit(ctx context.Context, k ir.Key, result ir.Pair) (bool, error)
	DeleteCombo(ctx context.Context, k ir.Key) error
	DeleteSplit(ctx context.Context, k ir.Key) error
}

// Loader supplies the persisted entries at startup.
type Loader interface {
	LoadCombos(ctx context.Context) ([]store.ComboRow, error)
	LoadSplits(ctx context.Context) ([]store.SplitRow, error)
}

// Cache maps canonical keys to resolved outcomes.
// Safe for concurrent use; each entry is updated atomically.
type Cache struct {
	mu      sync.RWMutex
	combos  map[ir.Key]ir.Element
	splits  map[ir.Key]ir.Pair
	persist Persister
}

// New returns an empty cache. A nil persister keeps the cache memory-only.
func New(p Persister) *Cache {
	return &Cache{
		combos:  make(map[ir.Key]ir.Element),
		splits:  make(map[ir.Key]ir.Pair),
		persist: p,
	}
}

// Load fills the cache from durable storage. Existing in-memory entries are
// replaced by loaded ones with the same key.
func (c *Cache) Load(ctx context.Context, l Loader) error {
	combos, err := l.LoadCombos(ctx)
	if err != nil {
		return fmt.Errorf("load combos: %w", err)
	}
	splits, err := l.LoadSplits(ctx)
	if err != nil {
		return fmt.Errorf("load splits: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range combos {
		c.combos[r.Key] = r.Result
	}
	for _, r := range splits {
		c.splits[r.Key] = r.Result
	}
	return nil
}

// LookupCombine returns the memoized result for k, which may be the tombstone.
func (c *Cache) LookupCombine(k ir.Key) (ir.Element, bool) {
	c.mu.RLock()
	e, ok := c.combos[k]
	c.mu.RUnlock()

	switch {
	case !ok:
		lookupsTotal.WithLabelValues("combine", outcomeMiss).Inc()
	case e.IsTombstone():
		lookupsTotal.WithLabelValues("combine", outcomeTombstone).Inc()
	default:
		lookupsTotal.WithLabelValues("combine", outcomeHit).Inc()
	}
	return e, ok
}

// LookupSplit returns the memoized pair for k, which may be the tombstone pair.
func (c *Cache) LookupSplit(k ir.Key) (ir.Pair, bool) {
	c.mu.RLock()
	p, ok := c.splits[k]
	c.mu.RUnlock()

	switch {
	case !ok:
		lookupsTotal.WithLabelValues("split", outcomeMiss).Inc()
	case p.IsTombstone():
		lookupsTotal.WithLabelValues("split", outcomeTombstone).Inc()
	default:
		lookupsTotal.WithLabelValues("split", outcomeHit).Inc()
	}
	return p, ok
}

// HasCombine reports whether k has an entry without counting a lookup.
func (c *Cache) HasCombine(k ir.Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.combos[k]
	return ok
}

// StoreCombine records result for k, overwriting any previous entry.
func (c *Cache) StoreCombine(ctx context.Context, k ir.Key, result ir.Element) error {
	c.mu.Lock()
	c.combos[k] = result
	c.mu.Unlock()
	storesTotal.WithLabelValues("combine", resultLabel(result.IsTombstone())).Inc()

	if c.persist == nil {
		return nil
	}
	if err := c.persist.PutCombo(ctx, k, result); err != nil {
		persistErrorsTotal.Inc()
		return fmt.Errorf("persist combine %s: %w", k, err)
	}
	return nil
}

// StoreSplit records result for k, overwriting any previous entry.
func (c *Cache) StoreSplit(ctx context.Context, k ir.Key, result ir.Pair) error {
	c.mu.Lock()
	c.splits[k] = result
	c.mu.Unlock()
	storesTotal.WithLabelValues("split", resultLabel(result.IsTombstone())).Inc()

	if c.persist == nil {
		return nil
	}
	if err := c.persist.PutSplit(ctx, k, result); err != nil {
		persistErrorsTotal.Inc()
		return fmt.Errorf("persist split %s: %w", k, err)
	}
	return nil
}

// MergeCombine stores result only if k has no entry. Resident entries win.
// Returns true if the entry was added.
func (c *Cache) MergeCombine(ctx context.Context, k ir.Key, result ir.Element) (bool, error) {
	c.mu.Lock()
	if _, ok := c.combos[k]; ok {
		c.mu.Unlock()
		return false, nil
	}
	c.combos[k] = result
	c.mu.Unlock()

	if c.persist == nil {
		return true, nil
	}
	if _, err := c.persist.MergeCombo(ctx, k, result); err != nil {
		persistErrorsTotal.Inc()
		return true, fmt.Errorf("persist merge combine %s: %w", k, err)
	}
	return true, nil
}

// MergeSplit stores result only if k has no entry. Resident entries win.
func (c *Cache) MergeSplit(ctx context.Context, k ir.Key, result ir.Pair) (bool, error) {
	c.mu.Lock()
	if _, ok := c.splits[k]; ok {
		c.mu.Unlock()
		return false, nil
	}
	c.splits[k] = result
	c.mu.Unlock()

	if c.persist == nil {
		return true, nil
	}
	if _, err := c.persist.MergeSplit(ctx, k, result); err != nil {
		persistErrorsTotal.Inc()
		return true, fmt.Errorf("persist merge split %s: %w", k, err)
	}
	return true, nil
}

// Forget removes the entry for k so the next request reaches the oracle.
// This is the only way to clear a tombstone.
func (c *Cache) Forget(ctx context.Context, k ir.Key) error {
	c.mu.Lock()
	switch k.Kind {
	case ir.KindCombine:
		delete(c.combos, k)
	case ir.KindSplit:
		delete(c.splits, k)
	default:
		c.mu.Unlock()
		return fmt.Errorf("forget: invalid key kind %s", k.Kind)
	}
	c.mu.Unlock()

	if c.persist == nil {
		return nil
	}
	var err error
	if k.Kind == ir.KindCombine {
		err = c.persist.DeleteCombo(ctx, k)
	} else {
		err = c.persist.DeleteSplit(ctx, k)
	}
	if err != nil {
		persistErrorsTotal.Inc()
		return fmt.Errorf("persist forget %s: %w", k, err)
	}
	return nil
}

// Combos returns a copy of every combination entry, ordered by key.
func (c *Cache) Combos() []store.ComboRow {
	c.mu.RLock()
	out := make([]store.ComboRow, 0, len(c.combos))
	for k, v := range c.combos {
		out = append(out, store.ComboRow{Key: k, Result: v})
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key) })
	return out
}

// Splits returns a copy of every split entry, ordered by key.
func (c *Cache) Splits() []store.SplitRow {
	c.mu.RLock()
	out := make([]store.SplitRow, 0, len(c.splits))
	for k, v := range c.splits {
		out = append(out, store.SplitRow{Key: k, Result: v})
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key) })
	return out
}

// Len returns the number of combination and split entries.
func (c *Cache) Len() (combos, splits int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.combos), len(c.splits)
}

func resultLabel(tombstone bool) string {
	if tombstone {
		return "tombstone"
	}
	return "element"
}

func keyLess(a, b ir.Key) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if c := ir.CompareSymbols(a.A, b.A); c != 0 {
		return c < 0
	}
	return ir.CompareSymbols(a.B, b.B) < 0
}
