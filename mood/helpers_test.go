// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mood

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trev-sykes/feels-aggregate/db"
	"github.com/trev-sykes/feels-aggregate/metrics"
	"github.com/trev-sykes/feels-aggregate/store"
	"github.com/trev-sykes/feels-aggregate/testutil"
)

const testSecret = "test-identity-secret"

type fixture struct {
	conn    *sql.DB
	store   *store.Store
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	return fixture{
		conn:    conn,
		store:   store.New(conn),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
}

// stubRandom replays fixed floats and always picks the bottom of an IntN range
type stubRandom struct {
	floats []float64
	i      int
}

func (s *stubRandom) Float64() float64 {
	f := s.floats[s.i%len(s.floats)]
	s.i++
	return f
}

func (s *stubRandom) IntN(int) int { return 0 }

// recordingInvalidator remembers which days were invalidated and whether the
// context it was handed could still be cancelled
type recordingInvalidator struct {
	mu          sync.Mutex
	days        []string
	cancellable int
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, day string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days = append(r.days, day)
	if ctx.Done() != nil {
		r.cancellable++
	}
}

// detached fails if any invalidation could have been cut short by its caller
func (r *recordingInvalidator) detached(t *testing.T) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancellable != 0 {
		t.Errorf("%d invalidations received a cancellable context", r.cancellable)
	}
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.days...)
}

// countingLocker wraps a Locker and tracks lock/unlock balance
type countingLocker struct {
	inner    db.Locker
	mu       sync.Mutex
	locks    int
	unlocks  int
	failWith error
}

func (c *countingLocker) Lock(ctx context.Context) (func(), error) {
	if c.failWith != nil {
		return nil, c.failWith
	}
	unlock, err := c.inner.Lock(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.locks++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.unlocks++
		c.mu.Unlock()
		unlock()
	}, nil
}

func (c *countingLocker) balanced(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks != c.unlocks {
		t.Errorf("lock acquired %d times but released %d times", c.locks, c.unlocks)
	}
}

func fixedVolume(t *testing.T, n int) *VolumeTable {
	t.Helper()
	vt, err := NewVolumeTable([]Bucket{{Min: n, Max: n, Weight: 1}})
	if err != nil {
		t.Fatal(err)
	}
	return vt
}
