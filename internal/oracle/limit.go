package oracle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/roach88/elemental/internal/ir"
)

// Limited throttles calls to next with a token bucket.
type Limited struct {
	next    Oracle
	limiter *rate.Limiter
}

// NewLimited allows perSecond calls per second with a burst of burst.
// A burst below one is raised to one.
func NewLimited(next Oracle, perSecond float64, burst int) *Limited {
	if burst < 1 {
		burst = 1
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Combine implements Oracle.
func (l *Limited) Combine(ctx context.Context, a, b string) (ir.Element, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return ir.Element{}, fmt.Errorf("rate limit: %w", err)
	}
	return l.next.Combine(ctx, a, b)
}

// Split implements Oracle.
func (l *Limited) Split(ctx context.Context, symbol string) ([]ir.Element, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return l.next.Split(ctx, symbol)
}
