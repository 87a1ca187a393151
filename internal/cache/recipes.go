package cache

import (
	"sort"

	"github.com/roach88/elemental/internal/ir"
)

// Recipes describes how a symbol relates to the memoized outcomes.
type Recipes struct {
	// MadeFrom lists combination keys whose result is the symbol.
	MadeFrom []ir.Key
	// SplitFrom lists split keys whose resulting pair contains the symbol.
	SplitFrom []ir.Key
	// SplitsInto is the pair the symbol splits into, if known and not a tombstone.
	SplitsInto *ir.Pair
}

// Empty reports whether no recipe mentions the symbol.
func (r Recipes) Empty() bool {
	return len(r.MadeFrom) == 0 && len(r.SplitFrom) == 0 && r.SplitsInto == nil
}

// Recipes collects every non-tombstone entry that produces or consumes symbol.
func (c *Cache) Recipes(symbol string) Recipes {
	symbol = ir.Normalize(symbol)

	c.mu.RLock()
	var r Recipes
	for k, v := range c.combos {
		if !v.IsTombstone() && v.Symbol == symbol {
			r.MadeFrom = append(r.MadeFrom, k)
		}
	}
	for k, p := range c.splits {
		if p.IsTombstone() {
			continue
		}
		if p[0].Symbol == symbol || p[1].Symbol == symbol {
			r.SplitFrom = append(r.SplitFrom, k)
		}
		if k.A == symbol {
			pair := p
			r.SplitsInto = &pair
		}
	}
	c.mu.RUnlock()

	sort.Slice(r.MadeFrom, func(i, j int) bool { return keyLess(r.MadeFrom[i], r.MadeFrom[j]) })
	sort.Slice(r.SplitFrom, func(i, j int) bool { return keyLess(r.SplitFrom[i], r.SplitFrom[j]) })
	return r
}
