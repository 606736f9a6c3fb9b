// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Metrics Types:

- Counter / CounterVec: monotonically increasing totals, optionally split
  by label (emotion, backfill outcome).

- HistogramVec: request latency per route, so percentiles are visible
  and not just averages.

Registration:
Everything is registered against the Registerer passed to New. The server
uses prometheus.DefaultRegisterer; tests pass a fresh prometheus.NewRegistry()
so repeated construction does not panic on duplicate registration.
*/

const namespace = "feels"

// Backfill outcome label values
const (
	OutcomeWritten    = "written"
	OutcomeSkipped    = "skipped"
	OutcomeNoActivity = "no_activity"
	OutcomeError      = "error"
)

type Metrics struct {
	VotesRecorded   *prometheus.CounterVec
	VotesDuplicate  prometheus.Counter
	VoteFailures    prometheus.Counter
	BackfillRuns    *prometheus.CounterVec
	SyntheticVotes  prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VotesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_recorded_total",
				Help:      "Total number of accepted votes",
			},
			[]string{"emotion"},
		),
		VotesDuplicate: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_duplicate_total",
				Help:      "Total number of votes rejected because the identity already voted today",
			},
		),
		VoteFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vote_failures_total",
				Help:      "Total number of vote submissions that failed for a reason other than a duplicate",
			},
		),
		BackfillRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backfill_runs_total",
				Help:      "Hourly backfill invocations by outcome",
			},
			[]string{"outcome"},
		),
		SyntheticVotes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synthetic_votes_total",
				Help:      "Total number of synthetic votes written by backfill and simulation",
			},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request latencies",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
			[]string{"method", "route"},
		),
	}
}
