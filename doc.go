// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the feels-aggregate API server.

feels-aggregate collects one anonymous emotion vote per visitor per UTC day and
serves a live 24-hour heatmap of the aggregated counts. A synthetic backfill
keeps the heatmap populated before real traffic arrives, without ever writing
into an hour that already holds data.

# Starting the Server

	DATABASE_URL=feels.db IDENTITY_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --identity-secret "$IDENTITY_SECRET"

A YAML file (-c, CONFIG_FILE) and a .env file are also read. Flags override
env, env overrides the file.

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string or SQLite file path
  - IDENTITY_SECRET (--identity-secret): Key for pseudonymous identity hashing

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ADMIN_KEY: Enables POST /api/buffer
  - BACKFILL_INTERVAL: Run hourly backfill in-process on this interval
  - REDIS_URL, SNAPSHOT_TTL: Heatmap snapshot cache
  - TRUSTED_PROXIES: Proxy IPs/CIDRs whose X-Forwarded-For identifies the client
  - LOG_LEVEL, LOG_FILE: Structured logging

# Architecture

  - handlers: HTTP request handlers (votes, heatmap, backfill)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, request metrics, JSON helpers
  - mood: Vote submission, heatmap reads, synthetic backfill
  - store: Vote ledger and aggregate table access
  - identity: Keyed day-scoped identity tokens
  - db: Schema, connections, transactions, backfill lock
  - cache: Snapshot cache (Redis or in-memory)
  - metrics: Prometheus collectors
  - logger: slog setup with file rotation
  - models: Request/response and domain types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
