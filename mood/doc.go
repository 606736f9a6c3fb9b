// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mood implements the vote, backfill, and heatmap services.

# Votes

VoteService.Submit derives the caller's day-scoped identity, then inserts the
ledger row and increments the (day, hour, emotion) cell in one transaction.
The ledger's UNIQUE (identity_hash, day) constraint decides races between
concurrent submissions from the same identity: one insert wins, the others
roll back with their increment.

	hour, err := votes.Submit(ctx, models.Happy, mood.Requester{IP: ip, UserAgent: ua}, time.Now())
	if errors.Is(err, mood.ErrAlreadyVoted) { ... }

# Backfill

BackfillService.Backfill fills the current UTC hour with synthetic counts
when, and only when, nothing is stored for it yet. The check and the write
run under a single named lock. The volume comes from VolumeBuckets and the
emotion mix from BackfillEmotionWeights; a drawn volume of zero writes nothing.

BackfillService.Simulate is the bulk variant for earlier hours of a day. Each
hour's volume follows GrowthCurve scaled by a base rate; the per-emotion
increments for an hour are written concurrently, hours in increasing order.

# Heatmap

HeatmapService.Snapshot expands stored cells into a dense 24x6 grid.
HeatmapService.Summary gives one hour's counts plus its dominant emotion.

# Weighted Draws

Weight tables are plain data. Draws build a running-sum table once and
binary-search a uniform value scaled to the total weight, so weights do not
need to sum to one.
*/
package mood
