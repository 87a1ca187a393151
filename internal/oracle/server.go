package oracle

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/elemental/internal/ir"
)

// NewHandler serves o over the oracle wire protocol, plus Prometheus metrics
// at /metrics and a liveness probe at /healthz.
//
// Failures are reported the way clients expect them: 200 with empty symbol and
// emoji for /add, and two such elements for /split. Only a malformed request
// gets a 400.
func NewHandler(o Oracle) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/add", func(w http.ResponseWriter, req *http.Request) {
		symbols := req.URL.Query()["symbols"]
		if len(symbols) != 2 {
			http.Error(w, "exactly two symbols are required", http.StatusBadRequest)
			return
		}
		slog.Info("add request", "symbols", symbols)

		e, err := ResolveCombine(req.Context(), o, symbols[0], symbols[1])
		if err != nil {
			slog.Warn("add failed", "symbols", symbols, "error", err)
		}
		writeJSON(w, e)
	})

	r.Get("/split", func(w http.ResponseWriter, req *http.Request) {
		symbol := req.URL.Query().Get("symbol")
		if symbol == "" {
			http.Error(w, "symbol is required", http.StatusBadRequest)
			return
		}
		slog.Info("split request", "symbol", symbol)

		p, err := ResolveSplit(req.Context(), o, symbol)
		if err != nil {
			slog.Warn("split failed", "symbol", symbol, "error", err)
		}
		writeJSON(w, []ir.Element{p[0], p[1]})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
