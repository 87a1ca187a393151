package oracle

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/elemental/internal/ir"
)

var (
	// requestsTotal counts backend calls by operation and result.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elemental",
		Subsystem: "oracle",
		Name:      "requests_total",
		Help:      "Oracle calls by operation (combine, split) and result (ok, error)",
	}, []string{"operation", "result"})

	// requestDuration tracks backend latency.
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "elemental",
		Subsystem: "oracle",
		Name:      "request_duration_seconds",
		Help:      "Oracle call duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"operation"})

	// coalescedTotal counts callers that shared another caller's in-flight request.
	coalescedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elemental",
		Subsystem: "oracle",
		Name:      "coalesced_total",
		Help:      "Oracle requests answered by an identical in-flight request",
	}, []string{"operation"})
)

// Instrumented records request counts and latency for next.
type Instrumented struct {
	next Oracle
}

// NewInstrumented wraps next.
func NewInstrumented(next Oracle) *Instrumented {
	return &Instrumented{next: next}
}

// Combine implements Oracle.
func (m *Instrumented) Combine(ctx context.Context, a, b string) (ir.Element, error) {
	start := time.Now()
	e, err := m.next.Combine(ctx, a, b)
	observe("combine", start, err)
	return e, err
}

// Split implements Oracle.
func (m *Instrumented) Split(ctx context.Context, symbol string) ([]ir.Element, error) {
	start := time.Now()
	elems, err := m.next.Split(ctx, symbol)
	observe("split", start, err)
	return elems, err
}

func observe(op string, start time.Time, err error) {
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	requestsTotal.WithLabelValues(op, result).Inc()
}
