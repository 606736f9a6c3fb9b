// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics defines the Prometheus instruments for votes, backfill runs,
// and HTTP latency. The server exposes them on GET /metrics.
package metrics
