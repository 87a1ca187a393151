package sidebar

import (
	"strings"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/ir"
)

// RecipeSource is the part of the cache hover text reads.
type RecipeSource interface {
	Recipes(symbol string) cache.Recipes
	LookupSplit(k ir.Key) (ir.Pair, bool)
}

// ElementSource resolves symbols to their current records.
type ElementSource interface {
	Get(symbol string) (ir.Element, bool)
}

// HoverText describes how symbol can be made: one line per combination that
// produces it, then a blank line, then one line per split that yields it.
// It returns "" when nothing is known.
func HoverText(symbol string, recipes RecipeSource, known ElementSource) string {
	r := recipes.Recipes(symbol)
	symbol = ir.Normalize(symbol)

	var direct []string
	for _, k := range r.MadeFrom {
		direct = append(direct, label(known, k.A)+" + "+label(known, k.B))
	}

	var inverse []string
	for _, k := range r.SplitFrom {
		pair, ok := recipes.LookupSplit(k)
		if !ok {
			continue
		}
		self, other := pair[0], pair[1]
		if self.Symbol != symbol {
			self, other = other, self
		}
		inverse = append(inverse, label(known, k.A)+" = "+describe(self)+" + "+describe(other))
	}

	var blocks []string
	if len(direct) > 0 {
		blocks = append(blocks, strings.Join(direct, "\n"))
	}
	if len(inverse) > 0 {
		blocks = append(blocks, strings.Join(inverse, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func label(known ElementSource, symbol string) string {
	if e, ok := known.Get(symbol); ok {
		return describe(e)
	}
	return symbol
}

func describe(e ir.Element) string {
	return e.Symbol + " (" + e.Glyph + ")"
}
