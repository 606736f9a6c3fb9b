// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mood

import (
	"context"
	"testing"
	"time"

	"github.com/trev-sykes/feels-aggregate/cache"
	"github.com/trev-sykes/feels-aggregate/models"
	"github.com/trev-sykes/feels-aggregate/testutil"
)

func TestSnapshot_EmptyDay(t *testing.T) {
	f := newFixture(t)
	hs := NewHeatmapService(f.store, nil)

	snap, err := hs.Snapshot(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Day != "2024-01-01" {
		t.Errorf("expected day 2024-01-01, got %q", snap.Day)
	}
	if len(snap.Hourly) != models.HoursPerDay {
		t.Fatalf("expected %d hours, got %d", models.HoursPerDay, len(snap.Hourly))
	}
	for hour, row := range snap.Hourly {
		if len(row) != len(models.Emotions) {
			t.Errorf("hour %d: expected %d emotions, got %d", hour, len(models.Emotions), len(row))
		}
		for e, n := range row {
			if n != 0 {
				t.Errorf("hour %d %s: expected 0, got %d", hour, e, n)
			}
		}
	}
}

func TestSnapshot_SparseCells(t *testing.T) {
	f := newFixture(t)
	testutil.SeedCell(t, f.conn, "2024-01-01", 0, models.Sad, 3)
	testutil.SeedCell(t, f.conn, "2024-01-01", 14, models.Happy, 7)
	testutil.SeedCell(t, f.conn, "2024-01-01", 23, models.Stressed, 1)
	testutil.SeedCell(t, f.conn, "2024-01-02", 14, models.Happy, 99)

	hs := NewHeatmapService(f.store, nil)
	snap, err := hs.Snapshot(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		hour    int
		emotion models.Emotion
		want    int
	}{
		{0, models.Sad, 3},
		{14, models.Happy, 7},
		{23, models.Stressed, 1},
		{14, models.Sad, 0},
		{12, models.Happy, 0},
	}
	for _, tt := range tests {
		if got := snap.Hourly[tt.hour][tt.emotion]; got != tt.want {
			t.Errorf("[%d][%s] = %d, want %d", tt.hour, tt.emotion, got, tt.want)
		}
	}
}

func TestSnapshot_ReflectsVote(t *testing.T) {
	f := newFixture(t)
	hs := NewHeatmapService(f.store, cache.NewMemoryCache(time.Minute))
	votes := NewVoteService(f.store, testSecret, f.metrics, hs)
	ctx := context.Background()

	// Prime the cache with the empty grid
	if _, err := hs.Snapshot(ctx, "2024-01-01"); err != nil {
		t.Fatal(err)
	}

	if _, err := votes.Submit(ctx, models.Happy, alice, testutil.TestNow); err != nil {
		t.Fatal(err)
	}

	snap, err := hs.Snapshot(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.Hourly[14][models.Happy]; got != 1 {
		t.Errorf("expected [14][happy]=1 after vote, got %d", got)
	}
}

// racingCache runs hook once, between a reader's database load and its Set
type racingCache struct {
	*cache.MemoryCache
	hook func()
}

func (c *racingCache) Set(ctx context.Context, day string, gen uint64, snap *models.HeatmapResponse) (bool, error) {
	if hook := c.hook; hook != nil {
		c.hook = nil
		hook()
	}
	return c.MemoryCache.Set(ctx, day, gen, snap)
}

func TestSnapshot_StaleReaderDoesNotOverwrite(t *testing.T) {
	f := newFixture(t)
	mem := cache.NewMemoryCache(time.Minute)
	rc := &racingCache{MemoryCache: mem}
	hs := NewHeatmapService(f.store, rc)
	votes := NewVoteService(f.store, testSecret, f.metrics, hs)
	ctx := context.Background()

	var fresh *models.HeatmapResponse
	rc.hook = func() {
		if _, err := votes.Submit(ctx, models.Happy, alice, testutil.TestNow); err != nil {
			t.Fatal(err)
		}
		// A second reader loads after the vote and caches its grid
		snap, err := hs.Snapshot(ctx, "2024-01-01")
		if err != nil {
			t.Fatal(err)
		}
		fresh = snap
	}

	stale, err := hs.Snapshot(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if fresh == nil {
		t.Fatal("interleaved reader never ran")
	}
	if got := stale.Hourly[14][models.Happy]; got != 0 {
		t.Fatalf("first reader should have loaded before the vote, got %d", got)
	}
	if got := fresh.Hourly[14][models.Happy]; got != 1 {
		t.Fatalf("second reader should see the vote, got %d", got)
	}

	cached, ok, _ := mem.Get(ctx, "2024-01-01")
	if !ok {
		t.Fatal("expected the newer grid to stay cached")
	}
	if got := cached.Hourly[14][models.Happy]; got != 1 {
		t.Errorf("cached grid went backwards: [14][happy]=%d", got)
	}

	snap, err := hs.Snapshot(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.Hourly[14][models.Happy]; got != 1 {
		t.Errorf("expected [14][happy]=1 on later read, got %d", got)
	}
}

func TestSnapshot_ServesFromCache(t *testing.T) {
	f := newFixture(t)
	hs := NewHeatmapService(f.store, cache.NewMemoryCache(time.Minute))
	ctx := context.Background()

	if _, err := hs.Snapshot(ctx, "2024-01-01"); err != nil {
		t.Fatal(err)
	}

	// Written behind the service's back, so only a cache miss would see it
	testutil.SeedCell(t, f.conn, "2024-01-01", 5, models.Content, 2)

	snap, _ := hs.Snapshot(ctx, "2024-01-01")
	if got := snap.Hourly[5][models.Content]; got != 0 {
		t.Errorf("expected cached zero, got %d", got)
	}

	hs.Invalidate(ctx, "2024-01-01")

	snap, _ = hs.Snapshot(ctx, "2024-01-01")
	if got := snap.Hourly[5][models.Content]; got != 2 {
		t.Errorf("expected 2 after invalidation, got %d", got)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name       string
		seed       map[models.Emotion]int
		dominant   *models.Emotion
		total      int
		percentage int
	}{
		{
			name:       "clear winner",
			seed:       map[models.Emotion]int{models.Happy: 6, models.Sad: 2, models.Angry: 1},
			dominant:   ptr(models.Happy),
			total:      9,
			percentage: 67,
		},
		{
			name:       "tie goes to display order",
			seed:       map[models.Emotion]int{models.Stressed: 3, models.Content: 3},
			dominant:   ptr(models.Content),
			total:      6,
			percentage: 50,
		},
		{
			name:       "single emotion",
			seed:       map[models.Emotion]int{models.Neutral: 4},
			dominant:   ptr(models.Neutral),
			total:      4,
			percentage: 100,
		},
		{
			name:  "empty hour",
			seed:  nil,
			total: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for e, n := range tt.seed {
				testutil.SeedCell(t, f.conn, "2024-01-01", 14, e, n)
			}

			hs := NewHeatmapService(f.store, nil)
			sum, err := hs.Summary(context.Background(), "2024-01-01", 14)
			if err != nil {
				t.Fatalf("Summary() error = %v", err)
			}

			if sum.Total != tt.total {
				t.Errorf("expected total %d, got %d", tt.total, sum.Total)
			}
			if sum.Percentage != tt.percentage {
				t.Errorf("expected percentage %d, got %d", tt.percentage, sum.Percentage)
			}
			switch {
			case tt.dominant == nil && sum.DominantEmotion != nil:
				t.Errorf("expected no dominant emotion, got %s", *sum.DominantEmotion)
			case tt.dominant != nil && (sum.DominantEmotion == nil || *sum.DominantEmotion != *tt.dominant):
				t.Errorf("expected dominant %s, got %v", *tt.dominant, sum.DominantEmotion)
			}
			if len(sum.Emotions) != len(models.Emotions) {
				t.Errorf("expected every emotion listed, got %d", len(sum.Emotions))
			}
			for i, ec := range sum.Emotions {
				if ec.Emotion != models.Emotions[i] {
					t.Errorf("emotion %d out of display order: %s", i, ec.Emotion)
				}
			}
		})
	}
}

func ptr(e models.Emotion) *models.Emotion { return &e }
