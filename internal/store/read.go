package store

import (
	"context"
	"fmt"

	"github.com/roach88/elemental/internal/ir"
)

// ComboRow is a persisted combination result.
type ComboRow struct {
	Key    ir.Key
	Result ir.Element
}

// SplitRow is a persisted split result.
type SplitRow struct {
	Key    ir.Key
	Result ir.Pair
}

// LoadElements returns all known elements in first-seen order.
func (s *Store) LoadElements(ctx context.Context) ([]ir.Element, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, glyph, discovery, created_at
		FROM elements
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query elements: %w", err)
	}
	defer rows.Close()

	var elems []ir.Element
	for rows.Next() {
		var e ir.Element
		var discovery int
		if err := rows.Scan(&e.Symbol, &e.Glyph, &discovery, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		e.IsDiscovery = discovery != 0
		elems = append(elems, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elements: %w", err)
	}
	return elems, nil
}

// LoadCombos returns every persisted combination result.
// Rows are ordered by (a, b) for deterministic iteration.
func (s *Store) LoadCombos(ctx context.Context) ([]ComboRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a, b, symbol, glyph, discovery
		FROM combos
		ORDER BY a ASC, b ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query combos: %w", err)
	}
	defer rows.Close()

	var out []ComboRow
	for rows.Next() {
		var r ComboRow
		var discovery int
		if err := rows.Scan(&r.Key.A, &r.Key.B, &r.Result.Symbol, &r.Result.Glyph, &discovery); err != nil {
			return nil, fmt.Errorf("scan combo: %w", err)
		}
		r.Key.Kind = ir.KindCombine
		r.Result.IsDiscovery = discovery != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combos: %w", err)
	}
	return out, nil
}

// LoadSplits returns every persisted split result, ordered by symbol.
func (s *Store) LoadSplits(ctx context.Context) ([]SplitRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, left_symbol, left_glyph, right_symbol, right_glyph
		FROM splits
		ORDER BY symbol ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer rows.Close()

	var out []SplitRow
	for rows.Next() {
		var r SplitRow
		if err := rows.Scan(&r.Key.A, &r.Result[0].Symbol, &r.Result[0].Glyph, &r.Result[1].Symbol, &r.Result[1].Glyph); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		r.Key.Kind = ir.KindSplit
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate splits: %w", err)
	}
	return out, nil
}
