package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes recorded by lookupsTotal.
const (
	outcomeHit       = "hit"
	outcomeTombstone = "tombstone"
	outcomeMiss      = "miss"
)

var (
	// lookupsTotal counts cache lookups by key kind and outcome.
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elemental",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by kind (combine, split) and outcome (hit, tombstone, miss)",
	}, []string{"kind", "outcome"})

	// storesTotal counts cache writes by key kind and whether the value was a tombstone.
	storesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elemental",
		Subsystem: "cache",
		Name:      "stores_total",
		Help:      "Cache writes by kind and result (element, tombstone)",
	}, []string{"kind", "result"})

	// persistErrorsTotal counts write-through failures.
	persistErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "elemental",
		Subsystem: "cache",
		Name:      "persist_errors_total",
		Help:      "Write-through failures to durable storage",
	})
)
