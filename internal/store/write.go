package store

import (
	"context"
	"fmt"

	"github.com/roach88/elemental/internal/ir"
)

// PutElement upserts an element into the known-elements list.
// A new symbol is appended to the end of the list. An existing symbol keeps its
// position and creation time but takes the new glyph. The discovery flag is
// sticky: once set it is never cleared.
func (s *Store) PutElement(ctx context.Context, e ir.Element) error {
	if e.IsTombstone() {
		return fmt.Errorf("put element: tombstone is not a known element")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO elements (symbol, glyph, discovery, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			glyph = excluded.glyph,
			discovery = MAX(elements.discovery, excluded.discovery)
	`, e.Symbol, e.Glyph, boolToInt(e.IsDiscovery), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("put element %q: %w", e.Symbol, err)
	}
	return nil
}

// MergeElement inserts an element only if its symbol is not already known.
// Returns true if a row was inserted.
func (s *Store) MergeElement(ctx context.Context, e ir.Element) (bool, error) {
	if e.IsTombstone() {
		return false, fmt.Errorf("merge element: tombstone is not a known element")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO elements (symbol, glyph, discovery, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO NOTHING
	`, e.Symbol, e.Glyph, boolToInt(e.IsDiscovery), e.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("merge element %q: %w", e.Symbol, err)
	}
	return inserted(res)
}

// PutCombo records the result of combining the pair named by k.
// A tombstone result is stored as empty symbol and glyph.
// Later writes for the same key replace earlier ones.
func (s *Store) PutCombo(ctx context.Context, k ir.Key, result ir.Element) error {
	id, err := comboID(k)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO combos (key_id, a, b, symbol, glyph, discovery)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_id) DO UPDATE SET
			symbol = excluded.symbol,
			glyph = excluded.glyph,
			discovery = excluded.discovery
	`, id, k.A, k.B, result.Symbol, result.Glyph, boolToInt(result.IsDiscovery))
	if err != nil {
		return fmt.Errorf("put combo %s: %w", k, err)
	}
	return nil
}

// MergeCombo inserts a combination result only if k has no entry yet.
// Returns true if a row was inserted.
func (s *Store) MergeCombo(ctx context.Context, k ir.Key, result ir.Element) (bool, error) {
	id, err := comboID(k)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO combos (key_id, a, b, symbol, glyph, discovery)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_id) DO NOTHING
	`, id, k.A, k.B, result.Symbol, result.Glyph, boolToInt(result.IsDiscovery))
	if err != nil {
		return false, fmt.Errorf("merge combo %s: %w", k, err)
	}
	return inserted(res)
}

// DeleteCombo removes the entry for k. Deleting a missing key is not an error.
func (s *Store) DeleteCombo(ctx context.Context, k ir.Key) error {
	id, err := comboID(k)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM combos WHERE key_id = ?`, id); err != nil {
		return fmt.Errorf("delete combo %s: %w", k, err)
	}
	return nil
}

// PutSplit records the result of splitting the symbol named by k.
// A tombstone pair is stored with empty halves.
func (s *Store) PutSplit(ctx context.Context, k ir.Key, result ir.Pair) error {
	id, err := splitID(k)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO splits (key_id, symbol, left_symbol, left_glyph, right_symbol, right_glyph)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_id) DO UPDATE SET
			left_symbol = excluded.left_symbol,
			left_glyph = excluded.left_glyph,
			right_symbol = excluded.right_symbol,
			right_glyph = excluded.right_glyph
	`, id, k.A, result[0].Symbol, result[0].Glyph, result[1].Symbol, result[1].Glyph)
	if err != nil {
		return fmt.Errorf("put split %s: %w", k, err)
	}
	return nil
}

// MergeSplit inserts a split result only if k has no entry yet.
// Returns true if a row was inserted.
func (s *Store) MergeSplit(ctx context.Context, k ir.Key, result ir.Pair) (bool, error) {
	id, err := splitID(k)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO splits (key_id, symbol, left_symbol, left_glyph, right_symbol, right_glyph)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_id) DO NOTHING
	`, id, k.A, result[0].Symbol, result[0].Glyph, result[1].Symbol, result[1].Glyph)
	if err != nil {
		return false, fmt.Errorf("merge split %s: %w", k, err)
	}
	return inserted(res)
}

// DeleteSplit removes the entry for k. Deleting a missing key is not an error.
func (s *Store) DeleteSplit(ctx context.Context, k ir.Key) error {
	id, err := splitID(k)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM splits WHERE key_id = ?`, id); err != nil {
		return fmt.Errorf("delete split %s: %w", k, err)
	}
	return nil
}

func comboID(k ir.Key) (string, error) {
	if k.Kind != ir.KindCombine {
		return "", fmt.Errorf("expected combine key, got %s", k.Kind)
	}
	return ir.KeyID(k)
}

func splitID(k ir.Key) (string, error) {
	if k.Kind != ir.KindSplit {
		return "", fmt.Errorf("expected split key, got %s", k.Kind)
	}
	return ir.KeyID(k)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func inserted(res rowsAffected) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
