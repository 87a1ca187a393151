package ir

// Element is a named, glyph-annotated entity identified by its Symbol.
//
// Two elements with the same Symbol are the same element regardless of Glyph.
// Glyph is always taken from the most recent resolution.
type Element struct {
	Symbol      string `json:"symbol"`
	Glyph       string `json:"emoji"`
	IsDiscovery bool   `json:"discovery,omitempty"`
	CreatedAt   int64  `json:"timestamp,omitempty"` // unix millis, zero when unknown
}

// Tombstone returns the sentinel element that marks a failed combination.
func Tombstone() Element {
	return Element{}
}

// IsTombstone reports whether e is the failure sentinel (empty symbol).
func (e Element) IsTombstone() bool {
	return e.Symbol == ""
}

// Valid reports whether e carries both a symbol and a glyph.
// Oracle results and imported entries that are not Valid are rejected.
func (e Element) Valid() bool {
	return e.Symbol != "" && e.Glyph != ""
}

// Label is the rendered text of an element: glyph, space, symbol.
// Placement geometry is always derived from the label.
func (e Element) Label() string {
	return e.Glyph + " " + e.Symbol
}

// Pair is the outcome of a split: exactly two elements.
type Pair [2]Element

// TombstonePair returns the sentinel pair that marks a failed split.
func TombstonePair() Pair {
	return Pair{Tombstone(), Tombstone()}
}

// IsTombstone reports whether either half of the pair is a tombstone.
func (p Pair) IsTombstone() bool {
	return p[0].IsTombstone() || p[1].IsTombstone()
}

// Valid reports whether both halves are well-formed elements.
func (p Pair) Valid() bool {
	return p[0].Valid() && p[1].Valid()
}

// PairFromSlice converts an oracle split response into a Pair.
// Any response whose length is not two, or that contains an element without
// symbol or glyph, yields the tombstone pair and ok=false.
func PairFromSlice(elems []Element) (p Pair, ok bool) {
	if len(elems) != 2 {
		return TombstonePair(), false
	}
	p = Pair{elems[0], elems[1]}
	if !p.Valid() {
		return TombstonePair(), false
	}
	return p, true
}
