package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/store"
)

// File is the save-file document. Files saved by the browser carry no
// version.
type File struct {
	Version             string                  `json:"version,omitempty"`
	Elements            []ir.Element            `json:"elements"`
	SymbolCombos        map[string]ir.Element   `json:"symbolCombos"`
	InverseSymbolCombos map[string][]ir.Element `json:"inverseSymbolCombos"`
}

// Collect builds a File from the ledger list and both caches.
// Combine keys use the legacy "A+++B" form.
func Collect(elements []ir.Element, combos []store.ComboRow, splits []store.SplitRow) File {
	f := File{
		Version:             ir.SchemaVersion,
		Elements:            make([]ir.Element, 0, len(elements)),
		SymbolCombos:        make(map[string]ir.Element, len(combos)),
		InverseSymbolCombos: make(map[string][]ir.Element, len(splits)),
	}
	f.Elements = append(f.Elements, elements...)
	for _, c := range combos {
		f.SymbolCombos[c.Key.String()] = c.Result
	}
	for _, s := range splits {
		f.InverseSymbolCombos[s.Key.A] = []ir.Element{s.Result[0], s.Result[1]}
	}
	return f
}

// Export writes f as indented JSON. Map members come out in key order.
func Export(w io.Writer, f File) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode save file: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write save file: %w", err)
	}
	return nil
}

// ValidationError describes one rejected entry. Path locates it in the file,
// e.g. elements[3] or symbolCombos["Earth+++Water"].
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}

// Decoded holds the valid entries of a save file.
type Decoded struct {
	Elements []ir.Element
	Combos   []store.ComboRow
	Splits   []store.SplitRow

	// Read counts every entry present in the file, valid or not.
	Read Counts
}

// Counts is a per-record tally.
type Counts struct {
	Elements int
	Combos   int
	Splits   int
}

type rawFile struct {
	Version             string                     `json:"version"`
	Elements            []json.RawMessage          `json:"elements"`
	SymbolCombos        map[string]json.RawMessage `json:"symbolCombos"`
	InverseSymbolCombos map[string]json.RawMessage `json:"inverseSymbolCombos"`
}

// Parse decodes a save file. A document that is not a JSON object with the
// expected member types, or that names a version other than
// ir.SchemaVersion, fails as a whole. Otherwise each entry is validated
// on its own: invalid entries are reported and skipped, valid ones have their
// discovery flag cleared.
func Parse(schema *Schema, data []byte) (Decoded, []ValidationError, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, nil, fmt.Errorf("invalid file format: %w", err)
	}
	if raw.Version != "" && raw.Version != ir.SchemaVersion {
		return Decoded{}, nil, fmt.Errorf("unsupported save file version %q, want %q", raw.Version, ir.SchemaVersion)
	}

	d := Decoded{Read: Counts{
		Elements: len(raw.Elements),
		Combos:   len(raw.SymbolCombos),
		Splits:   len(raw.InverseSymbolCombos),
	}}
	var invalid []ValidationError

	for i, msg := range raw.Elements {
		e, err := schema.Element(msg)
		if err != nil {
			invalid = append(invalid, ValidationError{Path: fmt.Sprintf("elements[%d]", i), Message: err.Error()})
			continue
		}
		d.Elements = append(d.Elements, imported(e))
	}

	for _, k := range slices.Sorted(maps.Keys(raw.SymbolCombos)) {
		path := fmt.Sprintf("symbolCombos[%q]", k)
		key, err := ir.ParseLegacyCombineKey(k)
		if err != nil {
			invalid = append(invalid, ValidationError{Path: path, Message: err.Error()})
			continue
		}
		e, err := schema.Element(raw.SymbolCombos[k])
		if err != nil {
			invalid = append(invalid, ValidationError{Path: path, Message: err.Error()})
			continue
		}
		d.Combos = append(d.Combos, store.ComboRow{Key: key, Result: imported(e)})
	}

	for _, k := range slices.Sorted(maps.Keys(raw.InverseSymbolCombos)) {
		path := fmt.Sprintf("inverseSymbolCombos[%q]", k)
		if k == "" {
			invalid = append(invalid, ValidationError{Path: path, Message: "empty symbol"})
			continue
		}
		p, err := schema.Pair(raw.InverseSymbolCombos[k])
		if err != nil {
			invalid = append(invalid, ValidationError{Path: path, Message: err.Error()})
			continue
		}
		p[0], p[1] = imported(p[0]), imported(p[1])
		d.Splits = append(d.Splits, store.SplitRow{Key: ir.SplitKey(k), Result: p})
	}

	return d, invalid, nil
}

func imported(e ir.Element) ir.Element {
	e.Symbol = ir.Normalize(e.Symbol)
	e.IsDiscovery = false
	return e
}

// ElementMerger adds elements that are not yet known.
type ElementMerger interface {
	Merge(ctx context.Context, e ir.Element) (bool, error)
}

// EntryMerger adds cache entries whose keys are not yet resident.
type EntryMerger interface {
	MergeCombine(ctx context.Context, k ir.Key, result ir.Element) (bool, error)
	MergeSplit(ctx context.Context, k ir.Key, result ir.Pair) (bool, error)
}

// Report summarizes an import.
type Report struct {
	Read    Counts
	Valid   Counts
	Added   Counts
	Invalid []ValidationError
}

// Warning returns a non-blocking message when some elements were dropped,
// or "" when every element was valid.
func (r Report) Warning() string {
	if r.Valid.Elements == r.Read.Elements {
		return ""
	}
	return fmt.Sprintf("%d of %d elements are invalid and were ignored",
		r.Read.Elements-r.Valid.Elements, r.Read.Elements)
}

// Apply merges d into the ledger and cache. Resident entries win.
func (d Decoded) Apply(ctx context.Context, elements ElementMerger, entries EntryMerger) (Report, error) {
	r := Report{
		Read: d.Read,
		Valid: Counts{
			Elements: len(d.Elements),
			Combos:   len(d.Combos),
			Splits:   len(d.Splits),
		},
	}

	for _, e := range d.Elements {
		added, err := elements.Merge(ctx, e)
		if err != nil {
			return r, fmt.Errorf("merge element %q: %w", e.Symbol, err)
		}
		if added {
			r.Added.Elements++
		}
	}
	for _, c := range d.Combos {
		added, err := entries.MergeCombine(ctx, c.Key, c.Result)
		if err != nil {
			return r, fmt.Errorf("merge combine %s: %w", c.Key, err)
		}
		if added {
			r.Added.Combos++
		}
	}
	for _, s := range d.Splits {
		added, err := entries.MergeSplit(ctx, s.Key, s.Result)
		if err != nil {
			return r, fmt.Errorf("merge split %s: %w", s.Key, err)
		}
		if added {
			r.Added.Splits++
		}
	}
	return r, nil
}

// Import parses data and applies it in one step.
func Import(ctx context.Context, schema *Schema, data []byte, elements ElementMerger, entries EntryMerger) (Report, error) {
	d, invalid, err := Parse(schema, data)
	if err != nil {
		return Report{}, err
	}
	r, err := d.Apply(ctx, elements, entries)
	r.Invalid = invalid
	return r, err
}
