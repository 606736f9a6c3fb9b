// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/trev-sykes/feels-aggregate/models"
)

// SnapshotCache holds recently computed heatmap snapshots keyed by day.
//
// Every day has a generation that Delete advances. A reader takes the
// generation before loading from the database and passes it to Set; Set
// stores nothing if the generation has moved on, so a snapshot loaded before
// a write can never replace one loaded after it.
type SnapshotCache interface {
	Get(ctx context.Context, day string) (*models.HeatmapResponse, bool, error)
	Generation(ctx context.Context, day string) (uint64, error)
	Set(ctx context.Context, day string, gen uint64, snap *models.HeatmapResponse) (bool, error)
	Delete(ctx context.Context, day string) error
	Close() error
}

// MemoryCache is an in-process SnapshotCache used when no Redis is configured.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
	gens    map[string]uint64
}

type memoryEntry struct {
	snap      *models.HeatmapResponse
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		gens:    make(map[string]uint64),
	}
}

func (c *MemoryCache) Get(_ context.Context, day string) (*models.HeatmapResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[day]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, day)
		return nil, false, nil
	}
	return e.snap, true, nil
}

func (c *MemoryCache) Generation(_ context.Context, day string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[day], nil
}

func (c *MemoryCache) Set(_ context.Context, day string, gen uint64, snap *models.HeatmapResponse) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[day] != gen {
		return false, nil
	}

	// Sweep expired entries
	for k, e := range c.entries {
		if !c.now().Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[day] = memoryEntry{snap: snap, expiresAt: c.now().Add(c.ttl)}
	return true, nil
}

func (c *MemoryCache) Delete(_ context.Context, day string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[day]++
	delete(c.entries, day)
	return nil
}

func (c *MemoryCache) Close() error { return nil }
