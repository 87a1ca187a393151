package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/elemental/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// el creates a test element with the given symbol and glyph.
func el(symbol, glyph string) ir.Element {
	return ir.Element{Symbol: symbol, Glyph: glyph}
}
