// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trev-sykes/feels-aggregate/cliparse"
	"github.com/trev-sykes/feels-aggregate/handlers"
	"github.com/trev-sykes/feels-aggregate/metrics"
	"github.com/trev-sykes/feels-aggregate/middleware"
	"github.com/trev-sykes/feels-aggregate/mood"
)

// Deps are the services the routes are served from
type Deps struct {
	Votes    *mood.VoteService
	Heatmap  *mood.HeatmapService
	Backfill *mood.BackfillService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Proxies whose X-Forwarded-For is believed; nil trusts none
	Proxies  *middleware.ProxyTrust
}

func NewRouter(deps Deps, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voteHandler := handlers.NewVoteHandler(deps.Votes, deps.Proxies)
	heatmapHandler := handlers.NewHeatmapHandler(deps.Heatmap)
	backfillHandler := handlers.NewBackfillHandler(deps.Backfill, cfg.AdminKey)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithMetrics(deps.Metrics, middleware.WithLogging(h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	// Voting (public)
	handle("POST /api/submit", voteHandler.Submit)
	handle("GET /api/me", voteHandler.GetMyVote)

	// Reads (public)
	handle("GET /api/heatmap", heatmapHandler.GetSnapshot)
	handle("GET /api/summary", heatmapHandler.GetSummary)

	// Backfill; bulk simulation requires X-Admin-Key
	handle("GET /api/hourly-populate", backfillHandler.TriggerHourly)
	handle("POST /api/buffer", backfillHandler.Simulate)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("feels-aggregate API v1"))
	})

	return mux
}
