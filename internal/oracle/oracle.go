// Package oracle resolves combinations and splits.
//
// The oracle is opaque to the rest of the system: it may be slow, fail, or
// return malformed data. Callers turn every error into a tombstone; nothing
// here is fatal.
//
// Backends (HTTPClient, OpenAIClient, Table) are composed with decorators
// (Coalescing, Limited, Instrumented) that share the Oracle interface.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/elemental/internal/ir"
)

// Oracle resolves two symbols into one element, or one symbol into two.
//
// Split returns whatever the backend produced; validating its arity is the
// caller's job so that malformed answers can be logged before tombstoning.
type Oracle interface {
	Combine(ctx context.Context, a, b string) (ir.Element, error)
	Split(ctx context.Context, symbol string) ([]ir.Element, error)
}

// ErrMalformed reports a response that could not be parsed into elements.
var ErrMalformed = errors.New("malformed oracle response")

// ErrUnknown reports that a backend has no answer for the request.
var ErrUnknown = errors.New("no known result")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle %s: HTTP %d", e.URL, e.Code)
}

// ResolveCombine calls o and maps any failure to the tombstone.
// The returned error is the cause, for logging.
func ResolveCombine(ctx context.Context, o Oracle, a, b string) (ir.Element, error) {
	e, err := o.Combine(ctx, a, b)
	if err != nil {
		return ir.Tombstone(), err
	}
	if !e.Valid() {
		return ir.Tombstone(), fmt.Errorf("combine %q + %q: %w: symbol and glyph are required", a, b, ErrMalformed)
	}
	e.Symbol = ir.Normalize(e.Symbol)
	return e, nil
}

// ResolveSplit calls o and maps any failure, including a response that is
// not exactly two well-formed elements, to the tombstone pair.
func ResolveSplit(ctx context.Context, o Oracle, symbol string) (ir.Pair, error) {
	elems, err := o.Split(ctx, symbol)
	if err != nil {
		return ir.TombstonePair(), err
	}
	p, ok := ir.PairFromSlice(elems)
	if !ok {
		return p, fmt.Errorf("split %q: %w: got %d elements, want 2 with symbol and glyph", symbol, ErrMalformed, len(elems))
	}
	p[0].Symbol = ir.Normalize(p[0].Symbol)
	p[1].Symbol = ir.Normalize(p[1].Symbol)
	return p, nil
}
