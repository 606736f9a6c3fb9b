// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mood

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/trev-sykes/feels-aggregate/db"
	"github.com/trev-sykes/feels-aggregate/metrics"
	"github.com/trev-sykes/feels-aggregate/models"
	"github.com/trev-sykes/feels-aggregate/store"
)

var (
	ErrInvalidRate = errors.New("votes per hour must be positive")
	ErrInvalidDay  = errors.New("day must be YYYY-MM-DD")
)

// DefaultVotesPerHour is the simulation base rate when the caller gives none.
const DefaultVotesPerHour = 30

type BackfillOutcome int

const (
	// BackfillWritten means synthetic counts were added to the hour.
	BackfillWritten BackfillOutcome = iota
	// BackfillSkipped means the hour already had data.
	BackfillSkipped
	// BackfillNoActivity means the drawn volume was zero.
	BackfillNoActivity
)

func (o BackfillOutcome) String() string {
	switch o {
	case BackfillWritten:
		return metrics.OutcomeWritten
	case BackfillSkipped:
		return metrics.OutcomeSkipped
	case BackfillNoActivity:
		return metrics.OutcomeNoActivity
	default:
		return "unknown"
	}
}

type BackfillResult struct {
	Outcome   BackfillOutcome
	Day       string
	Hour      int
	VoteCount int
	Counts    map[models.Emotion]int
}

type SimulationResult struct {
	Day          string
	Hours        int
	SkippedHours int
	Votes        int
}

// BackfillService writes plausible synthetic aggregates into hours that have
// no data yet. All runs share one lock.
type BackfillService struct {
	store   *store.Store
	locker  db.Locker
	rand    Random
	metrics *metrics.Metrics
	inv     Invalidator

	volume      *VolumeTable
	emotions    *EmotionTable
	simEmotions *EmotionTable
}

// NewBackfillService uses the default weight tables. inv may be nil.
func NewBackfillService(s *store.Store, l db.Locker, r Random, m *metrics.Metrics, inv Invalidator) *BackfillService {
	return &BackfillService{
		store:       s,
		locker:      l,
		rand:        r,
		metrics:     m,
		inv:         inv,
		volume:      mustVolumeTable(VolumeBuckets),
		emotions:    mustEmotionTable(BackfillEmotionWeights),
		simEmotions: mustEmotionTable(SimulationEmotionWeights),
	}
}

// WithVolumeTable replaces the hourly volume distribution.
func (bs *BackfillService) WithVolumeTable(t *VolumeTable) *BackfillService {
	bs.volume = t
	return bs
}

// Backfill populates the current UTC hour if nothing is stored for it yet.
// The existence check and the write happen under the backfill lock, so
// concurrent calls for the same hour write at most once.
func (bs *BackfillService) Backfill(ctx context.Context, now time.Time) (BackfillResult, error) {
	day, hour := models.Partition(now)
	res := BackfillResult{Day: day, Hour: hour}

	unlock, err := bs.locker.Lock(ctx)
	if err != nil {
		bs.metrics.BackfillRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return res, fmt.Errorf("acquire backfill lock: %w", err)
	}
	defer unlock()

	has, err := bs.store.HourHasData(ctx, day, hour)
	if err != nil {
		bs.metrics.BackfillRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return res, err
	}
	if has {
		res.Outcome = BackfillSkipped
		bs.metrics.BackfillRuns.WithLabelValues(res.Outcome.String()).Inc()
		slog.Debug("backfill skipped, hour already populated", "day", day, "hour", hour)
		return res, nil
	}

	res.VoteCount = bs.volume.Draw(bs.rand)
	if res.VoteCount == 0 {
		res.Outcome = BackfillNoActivity
		bs.metrics.BackfillRuns.WithLabelValues(res.Outcome.String()).Inc()
		slog.Info("backfill drew no activity", "day", day, "hour", hour)
		return res, nil
	}

	res.Counts = bs.emotions.Distribute(bs.rand, res.VoteCount)

	err = db.RunTx(ctx, bs.store.DB(), func(tx *sql.Tx) error {
		for _, e := range models.Emotions {
			if n := res.Counts[e]; n > 0 {
				if err := bs.store.Increment(ctx, tx, day, hour, e, n); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		bs.metrics.BackfillRuns.WithLabelValues(metrics.OutcomeError).Inc()
		return res, fmt.Errorf("write backfill: %w", err)
	}

	res.Outcome = BackfillWritten
	bs.metrics.BackfillRuns.WithLabelValues(res.Outcome.String()).Inc()
	bs.metrics.SyntheticVotes.Add(float64(res.VoteCount))
	if bs.inv != nil {
		bs.inv.Invalidate(context.WithoutCancel(ctx), day)
	}

	slog.Info("backfill written", "day", day, "hour", hour, "votes", res.VoteCount)
	return res, nil
}

// GrowthCurve is a sigmoid over hour of day: near zero before 06:00, steepest
// at 10:00, approaching 1 in the evening.
func GrowthCurve(hour int) float64 {
	return 1 / (1 + math.Exp(-0.35*(float64(hour)-10)))
}

// VotesForHour scales the base rate by the growth curve, never below one.
func VotesForHour(base, hour int) int {
	return max(1, int(math.Floor(float64(base)*GrowthCurve(hour))))
}

// Simulate fills past hours of day with synthetic traffic. For today that is
// hours before the current one, for earlier days all 24, for later days none.
// Hours that already hold data are left alone.
func (bs *BackfillService) Simulate(ctx context.Context, day string, now time.Time, votesPerHour int) (SimulationResult, error) {
	today, currentHour := models.Partition(now)
	if day == "" {
		day = today
	}
	res := SimulationResult{Day: day}

	if votesPerHour <= 0 {
		return res, ErrInvalidRate
	}
	if !models.ValidDay(day) {
		return res, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}

	// YYYY-MM-DD compares chronologically as a string
	end := 0
	switch {
	case day < today:
		end = models.HoursPerDay
	case day == today:
		end = currentHour
	}

	unlock, err := bs.locker.Lock(ctx)
	if err != nil {
		return res, fmt.Errorf("acquire backfill lock: %w", err)
	}
	defer unlock()

	// A run that fails part-way may still have written some hours
	touched := false
	defer func() {
		if touched && bs.inv != nil {
			bs.inv.Invalidate(context.WithoutCancel(ctx), day)
		}
	}()

	for hour := 0; hour < end; hour++ {
		has, err := bs.store.HourHasData(ctx, day, hour)
		if err != nil {
			return res, err
		}
		if has {
			res.SkippedHours++
			continue
		}

		n := VotesForHour(votesPerHour, hour)
		counts := bs.simEmotions.Distribute(bs.rand, n)
		touched = true
		if err := bs.writeHour(ctx, day, hour, counts); err != nil {
			return res, fmt.Errorf("simulate hour %d: %w", hour, err)
		}

		res.Hours++
		res.Votes += n
		bs.metrics.SyntheticVotes.Add(float64(n))
	}

	slog.Info("simulation complete", "day", day, "hours", res.Hours, "skipped_hours", res.SkippedHours, "votes", res.Votes)
	return res, nil
}

// writeHour issues one independent increment per emotion, concurrently.
func (bs *BackfillService) writeHour(ctx context.Context, day string, hour int, counts map[models.Emotion]int) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for e, n := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bs.store.Increment(ctx, bs.store.DB(), day, hour, e, n); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Run calls Backfill once immediately and then on every tick until ctx ends.
func (bs *BackfillService) Run(ctx context.Context, interval time.Duration, now func() time.Time) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bs.runOnce(ctx, now())
	for {
		select {
		case <-ctx.Done():
			slog.Info("backfill loop received shutdown signal")
			return nil

		case <-ticker.C:
			bs.runOnce(ctx, now())
		}
	}
}

func (bs *BackfillService) runOnce(ctx context.Context, now time.Time) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := bs.Backfill(runCtx, now); err != nil && ctx.Err() == nil {
		slog.Error("scheduled backfill failed", "error", err)
	}
}
