// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mood

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/trev-sykes/feels-aggregate/cache"
	"github.com/trev-sykes/feels-aggregate/models"
	"github.com/trev-sykes/feels-aggregate/store"
)

// HeatmapService reads aggregates back out as dense grids.
type HeatmapService struct {
	store *store.Store
	cache cache.SnapshotCache
}

// NewHeatmapService returns a reader; c may be nil to disable caching.
func NewHeatmapService(s *store.Store, c cache.SnapshotCache) *HeatmapService {
	return &HeatmapService{store: s, cache: c}
}

// EmptyGrid returns 24 hours with every emotion at zero.
func EmptyGrid() map[int]map[models.Emotion]int {
	grid := make(map[int]map[models.Emotion]int, models.HoursPerDay)
	for hour := 0; hour < models.HoursPerDay; hour++ {
		grid[hour] = models.EmptyCounts()
	}
	return grid
}

// Snapshot returns the full 24x6 grid for day. Missing cells read as zero.
// A grid loaded before a concurrent write is returned but never cached.
func (hs *HeatmapService) Snapshot(ctx context.Context, day string) (*models.HeatmapResponse, error) {
	var (
		gen       uint64
		cacheable bool
	)
	if hs.cache != nil {
		snap, ok, err := hs.cache.Get(ctx, day)
		if err != nil {
			slog.Warn("snapshot cache read failed", "day", day, "error", err)
		} else if ok {
			return snap, nil
		}

		// Taken before the load so a write in between is detected on Set
		gen, err = hs.cache.Generation(ctx, day)
		if err != nil {
			slog.Warn("snapshot generation read failed", "day", day, "error", err)
		} else {
			cacheable = true
		}
	}

	cells, err := hs.store.DayCells(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	grid := EmptyGrid()
	for _, c := range cells {
		row, ok := grid[c.Hour]
		if !ok || !c.Emotion.Valid() {
			continue
		}
		row[c.Emotion] = c.Count
	}

	snap := &models.HeatmapResponse{Day: day, Hourly: grid}

	if cacheable {
		stored, err := hs.cache.Set(ctx, day, gen, snap)
		if err != nil {
			slog.Warn("snapshot cache write failed", "day", day, "error", err)
		} else if !stored {
			slog.Debug("snapshot superseded by a newer write, not cached", "day", day)
		}
	}
	return snap, nil
}

// Summary reports one hour's counts and its dominant emotion. Ties go to the
// emotion listed first in models.Emotions; an empty hour has no dominant emotion.
func (hs *HeatmapService) Summary(ctx context.Context, day string, hour int) (*models.SummaryResponse, error) {
	cells, err := hs.store.HourCells(ctx, day, hour)
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}

	counts := models.EmptyCounts()
	for _, c := range cells {
		if c.Emotion.Valid() {
			counts[c.Emotion] = c.Count
		}
	}

	resp := &models.SummaryResponse{
		Day:      day,
		Hour:     hour,
		Emotions: make([]models.EmotionCount, 0, len(models.Emotions)),
	}

	best := -1
	for _, e := range models.Emotions {
		n := counts[e]
		resp.Emotions = append(resp.Emotions, models.EmotionCount{Emotion: e, Count: n})
		resp.Total += n
		if n > best {
			best = n
			dominant := e
			resp.DominantEmotion = &dominant
		}
	}

	if resp.Total == 0 {
		resp.DominantEmotion = nil
		return resp, nil
	}
	resp.Percentage = int(math.Round(float64(best) / float64(resp.Total) * 100))
	return resp, nil
}

// Invalidate drops the cached snapshot for day.
func (hs *HeatmapService) Invalidate(ctx context.Context, day string) {
	if hs.cache == nil {
		return
	}
	if err := hs.cache.Delete(ctx, day); err != nil {
		slog.Warn("snapshot cache invalidation failed", "day", day, "error", err)
	}
}
