// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Emotions

The vote set is closed:

	happy, content, neutral, stressed, sad, angry

ParseEmotion is the only way user input becomes an Emotion.

# Partitions

Every vote and aggregate is keyed by a UTC (day, hour) pair:

	day, hour := models.Partition(time.Now()) // "2024-01-01", 14

# Request Types

  - SubmitVoteRequest: emotion
  - SimulateRequest: votesPerHour, day

# Response Types

  - SubmitVoteResponse: ok, hour, error (ALREADY_VOTED | MISSING_EMOTION)
  - MyVoteResponse: emotion (or null)
  - HeatmapResponse: day, hourly grid
  - SummaryResponse: per-emotion counts for one hour plus the dominant emotion
  - BackfillResponse: skipped / success shapes of the hourly backfill trigger
  - SimulateResponse: bulk simulation totals
  - ErrorResponse: error, message

# Domain Types

  - VoteRecord: one ledger row per (identity, day)
  - AggregateCell: running count per (day, hour, emotion)
*/
package models
