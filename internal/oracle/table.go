package oracle

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/elemental/internal/ir"
)

// Recipe is one row of a recipe table file.
type Recipe struct {
	A      string    `yaml:"a"`
	B      string    `yaml:"b"`
	Result TableItem `yaml:"result"`
}

// Decomposition is one split row of a recipe table file.
type Decomposition struct {
	Symbol string      `yaml:"symbol"`
	Into   []TableItem `yaml:"into"`
}

// TableItem is an element in a recipe table file.
type TableItem struct {
	Symbol string `yaml:"symbol"`
	Glyph  string `yaml:"glyph"`
}

// TableFile is the YAML layout of a recipe table.
type TableFile struct {
	Combine []Recipe        `yaml:"combine"`
	Split   []Decomposition `yaml:"split"`
}

// Table is a fixed, offline oracle. Unknown requests fail with ErrUnknown.
type Table struct {
	combos map[ir.Key]ir.Element
	splits map[ir.Key][]ir.Element
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		combos: make(map[ir.Key]ir.Element),
		splits: make(map[ir.Key][]ir.Element),
	}
}

// LoadTable reads a recipe table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a recipe table. Unknown fields are rejected.
func ParseTable(data []byte) (*Table, error) {
	var f TableFile
	if err := decodeStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse recipe table: %w", err)
	}

	t := NewTable()
	for i, r := range f.Combine {
		if r.A == "" || r.B == "" {
			return nil, fmt.Errorf("combine[%d]: a and b are required", i)
		}
		t.AddCombine(r.A, r.B, ir.Element{Symbol: r.Result.Symbol, Glyph: r.Result.Glyph})
	}
	for i, d := range f.Split {
		if d.Symbol == "" {
			return nil, fmt.Errorf("split[%d]: symbol is required", i)
		}
		into := make([]ir.Element, 0, len(d.Into))
		for _, it := range d.Into {
			into = append(into, ir.Element{Symbol: it.Symbol, Glyph: it.Glyph})
		}
		t.AddSplit(d.Symbol, into...)
	}
	return t, nil
}

// AddCombine records the answer for a + b. An invalid result is returned as
// is, so tables can script malformed answers.
func (t *Table) AddCombine(a, b string, result ir.Element) {
	t.combos[ir.CombineKey(a, b)] = result
}

// AddSplit records the answer for splitting symbol.
func (t *Table) AddSplit(symbol string, into ...ir.Element) {
	t.splits[ir.SplitKey(symbol)] = into
}

// Combine implements Oracle.
func (t *Table) Combine(_ context.Context, a, b string) (ir.Element, error) {
	e, ok := t.combos[ir.CombineKey(a, b)]
	if !ok {
		return ir.Element{}, fmt.Errorf("combine %q + %q: %w", a, b, ErrUnknown)
	}
	return e, nil
}

// Split implements Oracle.
func (t *Table) Split(_ context.Context, symbol string) ([]ir.Element, error) {
	into, ok := t.splits[ir.SplitKey(symbol)]
	if !ok {
		return nil, fmt.Errorf("split %q: %w", symbol, ErrUnknown)
	}
	out := make([]ir.Element, len(into))
	copy(out, into)
	return out, nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}
