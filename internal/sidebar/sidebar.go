// Package sidebar orders the known elements for the element list: search
// filtering, pins, and the four sort criteria.
package sidebar

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/elemental/internal/ir"
)

// SortBy is a sort criterion.
type SortBy int

const (
	// ByTime orders by first-seen timestamp. Seed elements have none and
	// sort first.
	ByTime SortBy = iota
	// ByDiscovery puts first discoveries ahead of everything else.
	ByDiscovery
	// ByGlyph orders by glyph under the root locale collation.
	ByGlyph
	// BySymbol orders by symbol under the root locale collation.
	BySymbol
)

var sortNames = []string{"time", "discovery", "glyph", "symbol"}

// String returns the criterion name.
func (s SortBy) String() string {
	if s < 0 || int(s) >= len(sortNames) {
		return fmt.Sprintf("SortBy(%d)", int(s))
	}
	return sortNames[s]
}

// ParseSortBy parses a criterion name. "emoji" is accepted for ByGlyph.
func ParseSortBy(s string) (SortBy, error) {
	if s == "emoji" {
		return ByGlyph, nil
	}
	for i, name := range sortNames {
		if name == s {
			return SortBy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sort criterion %q (want time, discovery, glyph or symbol)", s)
}

// Options controls List.
type Options struct {
	Query      string
	Sort       SortBy
	Descending bool
}

// Entry is one row of the element list.
type Entry struct {
	ir.Element
	Pinned bool

	// position in the input, the final tie-break
	order int
}

// Pins is the set of pinned symbols. The zero value is empty and ready to use.
type Pins struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// Toggle pins or unpins symbol and reports whether it is now pinned.
func (p *Pins) Toggle(symbol string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.set == nil {
		p.set = make(map[string]struct{})
	}
	if _, ok := p.set[symbol]; ok {
		delete(p.set, symbol)
		return false
	}
	p.set[symbol] = struct{}{}
	return true
}

// Pinned reports whether symbol is pinned.
func (p *Pins) Pinned(symbol string) bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.set[symbol]
	return ok
}

// List filters and orders elements.
//
// An element matches when its lowercased symbol contains the lowercased
// query or its glyph contains the query. Pinned matches come first. Within
// each group, elements whose symbol or glyph starts with the query come
// before the rest, then the criterion decides with input order breaking ties.
// Descending reverses that order inside each group and leaves pins and prefix
// matches on top.
func List(elements []ir.Element, pins *Pins, opt Options) []Entry {
	q := strings.ToLower(opt.Query)

	var pinned, rest []Entry
	for i, e := range elements {
		if !matches(e, opt.Query, q) {
			continue
		}
		entry := Entry{Element: e, Pinned: pins.Pinned(e.Symbol), order: i}
		if entry.Pinned {
			pinned = append(pinned, entry)
		} else {
			rest = append(rest, entry)
		}
	}

	cmp := comparator(opt)
	slices.SortFunc(pinned, cmp)
	slices.SortFunc(rest, cmp)
	return append(pinned, rest...)
}

func matches(e ir.Element, query, lowered string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Symbol), lowered) || strings.Contains(e.Glyph, query)
}

func prefixMatch(e ir.Element, query, lowered string) bool {
	if query == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(e.Symbol), lowered) || strings.HasPrefix(e.Glyph, query)
}

func comparator(opt Options) func(a, b Entry) int {
	q := strings.ToLower(opt.Query)
	col := collate.New(language.Und)

	criterion := func(a, b Entry) int {
		switch opt.Sort {
		case ByDiscovery:
			switch {
			case a.IsDiscovery == b.IsDiscovery:
				return 0
			case a.IsDiscovery:
				return -1
			default:
				return 1
			}
		case ByGlyph:
			return col.CompareString(a.Glyph, b.Glyph)
		case BySymbol:
			return col.CompareString(a.Symbol, b.Symbol)
		default:
			switch {
			case a.CreatedAt < b.CreatedAt:
				return -1
			case a.CreatedAt > b.CreatedAt:
				return 1
			}
			return 0
		}
	}

	return func(a, b Entry) int {
		pa, pb := prefixMatch(a.Element, opt.Query, q), prefixMatch(b.Element, opt.Query, q)
		if pa != pb {
			if pa {
				return -1
			}
			return 1
		}
		c := criterion(a, b)
		if c == 0 {
			c = a.order - b.order
		}
		if opt.Descending {
			return -c
		}
		return c
	}
}
