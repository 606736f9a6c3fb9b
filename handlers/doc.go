// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the mood API.

# Handler Types

Each handler is a thin struct over one mood service:

  - VoteHandler: vote submission and "my vote today"
  - HeatmapHandler: daily heatmap grid and hourly summary
  - BackfillHandler: hourly synthetic backfill and bulk simulation

Handlers read the clock through an injected now func so tests can pin the
UTC day and hour.

# Voting

	POST /api/submit → Submit     {ok:true, hour} | {ok:false, error}
	GET  /api/me     → GetMyVote  {emotion: string|null}

A missing, unknown or unparseable emotion is a 400 with MISSING_EMOTION.
A second vote from the same identity on the same UTC day is a 200 with
ALREADY_VOTED. Identity comes from the forwarded client address and the
User-Agent header.

# Reading

	GET /api/heatmap[?day=YYYY-MM-DD]            → GetSnapshot
	GET /api/summary[?day=YYYY-MM-DD&hour=0..23] → GetSummary

# Backfill

	GET  /api/hourly-populate → TriggerHourly
	POST /api/buffer          → Simulate (X-Admin-Key)

TriggerHourly answers {"skipped":true}, {"skipped":"no activity",...} or
{"success":true,...}. Simulate is disabled (404) unless an admin key is
configured.
*/
package handlers
