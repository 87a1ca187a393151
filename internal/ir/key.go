package ir

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// LegacySeparator joins a combination pair in the exported save format.
// It is never used for in-memory or stored keys.
const LegacySeparator = "+++"

// KeyKind distinguishes combination keys from split keys.
type KeyKind uint8

const (
	// KindCombine keys an unordered pair of symbols.
	KindCombine KeyKind = iota + 1
	// KindSplit keys a single symbol.
	KindSplit
)

func (k KeyKind) String() string {
	switch k {
	case KindCombine:
		return "combine"
	case KindSplit:
		return "split"
	default:
		return fmt.Sprintf("KeyKind(%d)", uint8(k))
	}
}

// Key is the canonical identifier of a combination or split request.
//
// For KindCombine, A <= B in UTF-16 code unit order, so CombineKey(a, b) and
// CombineKey(b, a) produce equal values. For KindSplit, B is empty.
// Key is comparable and is used directly as a map key.
type Key struct {
	Kind KeyKind
	A    string
	B    string
}

// Normalize returns the NFC form of a symbol.
func Normalize(symbol string) string {
	return norm.NFC.String(symbol)
}

// CombineKey returns the canonical key for combining a and b.
// Pure, total and symmetric: CombineKey(a, b) == CombineKey(b, a).
func CombineKey(a, b string) Key {
	a, b = Normalize(a), Normalize(b)
	if CompareSymbols(a, b) > 0 {
		a, b = b, a
	}
	return Key{Kind: KindCombine, A: a, B: b}
}

// SplitKey returns the canonical key for splitting s.
func SplitKey(s string) Key {
	return Key{Kind: KindSplit, A: Normalize(s)}
}

// Symbols returns the symbols the key was built from, in canonical order.
func (k Key) Symbols() []string {
	if k.Kind == KindSplit {
		return []string{k.A}
	}
	return []string{k.A, k.B}
}

// Has reports whether symbol participates in the key.
func (k Key) Has(symbol string) bool {
	return k.A == symbol || (k.Kind == KindCombine && k.B == symbol)
}

// String returns the legacy textual form: "A+++B" for combinations,
// the bare symbol for splits.
func (k Key) String() string {
	if k.Kind == KindCombine {
		return k.A + LegacySeparator + k.B
	}
	return k.A
}

// ParseLegacyCombineKey parses an "A+++B" key from a saved file.
// The halves are re-canonicalized, so unordered input is accepted.
func ParseLegacyCombineKey(s string) (Key, error) {
	parts := strings.Split(s, LegacySeparator)
	if len(parts) != 2 {
		return Key{}, fmt.Errorf("combination key %q: want 2 symbols, got %d", s, len(parts))
	}
	if parts[0] == "" || parts[1] == "" {
		return Key{}, fmt.Errorf("combination key %q: empty symbol", s)
	}
	return CombineKey(parts[0], parts[1]), nil
}

// CompareSymbols orders symbols by UTF-16 code units, matching the ordering
// used by saved files produced in the browser. Invalid UTF-8 encodes as
// U+FFFD, so distinct strings that collide there are ordered by bytes.
func CompareSymbols(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return strings.Compare(a, b)
}
