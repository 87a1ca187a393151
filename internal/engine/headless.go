package engine

import (
	"context"
	"errors"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/oracle"
	"github.com/roach88/elemental/internal/sound"
)

// Result is the outcome of a headless combine or split.
type Result struct {
	Key ir.Key
	// Elements holds one element for a combine and two for a split. It is
	// empty when the result is a tombstone.
	Elements []ir.Element
	// Cues holds the classification of each element, or a single Failure.
	Cues []sound.Kind
	// Cached is true when the oracle was not consulted.
	Cached bool
}

// Failed reports whether the result is a tombstone.
func (r Result) Failed() bool {
	return len(r.Elements) == 0
}

// Combine resolves a + b without touching the canvas. A cache miss blocks on
// the oracle; the answer is cached and its elements recorded in the ledger
// the same way a drop on the canvas would. A tombstone is returned with the
// oracle cause as a RuntimeError.
func (e *Engine) Combine(ctx context.Context, a, b string) (Result, error) {
	key := ir.CombineKey(a, b)
	res := Result{Key: key}

	el, cached := e.cache.LookupCombine(key)
	var cause error
	if !cached {
		var err error
		el, err = oracle.ResolveCombine(ctx, e.oracle, key.A, key.B)
		if abandoned(ctx, err) {
			return res, err
		}
		cause = wrapOracleError(key, err)
		if err := e.cache.StoreCombine(ctx, key, el); err != nil {
			return res, err
		}
	}
	res.Cached = cached

	if el.IsTombstone() {
		res.Cues = []sound.Kind{sound.Failure}
		e.player.Play(sound.Failure)
		return res, cause
	}
	return e.observe(ctx, res, el)
}

// Split resolves the decomposition of symbol without touching the canvas.
func (e *Engine) Split(ctx context.Context, symbol string) (Result, error) {
	key := ir.SplitKey(symbol)
	res := Result{Key: key}

	pair, cached := e.cache.LookupSplit(key)
	var cause error
	if !cached {
		var err error
		pair, err = oracle.ResolveSplit(ctx, e.oracle, key.A)
		if abandoned(ctx, err) {
			return res, err
		}
		cause = wrapOracleError(key, err)
		if err := e.cache.StoreSplit(ctx, key, pair); err != nil {
			return res, err
		}
	}
	res.Cached = cached

	if pair.IsTombstone() {
		res.Cues = []sound.Kind{sound.Failure}
		e.player.Play(sound.Failure)
		return res, cause
	}
	return e.observe(ctx, res, pair[0], pair[1])
}

func (e *Engine) observe(ctx context.Context, res Result, elems ...ir.Element) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, el := range elems {
		out, err := e.ledger.Observe(ctx, el, e.canvas.Visible(el.Symbol), e.now())
		if err != nil {
			return res, err
		}
		e.player.Play(out.Cue)
		res.Elements = append(res.Elements, out.Element)
		res.Cues = append(res.Cues, out.Cue)
	}
	return res, nil
}

func wrapOracleError(key ir.Key, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, oracle.ErrMalformed) {
		return NewMalformedResult(key.String(), err)
	}
	return NewOracleFailure(key.String(), err)
}
