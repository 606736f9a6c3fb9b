// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the mood API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{...}, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Voting (public, identity from client address and User-Agent):

	POST /api/submit - Cast today's vote
	GET  /api/me     - Today's vote for this client, or null

Reads (public):

	GET /api/heatmap - 24x6 grid for a UTC day
	GET /api/summary - Counts and dominant emotion for one hour

Backfill:

	GET  /api/hourly-populate - Populate the current hour if empty
	POST /api/buffer          - Simulate past hours (requires X-Admin-Key)

Every /api route is wrapped in middleware.WithLogging and
middleware.WithMetrics, keyed by its route pattern.
*/
package router
