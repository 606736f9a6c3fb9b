// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trev-sykes/feels-aggregate/cache"
	"github.com/trev-sykes/feels-aggregate/db"
	"github.com/trev-sykes/feels-aggregate/metrics"
	"github.com/trev-sykes/feels-aggregate/middleware"
	"github.com/trev-sykes/feels-aggregate/mood"
	"github.com/trev-sykes/feels-aggregate/store"
	"github.com/trev-sykes/feels-aggregate/testutil"
)

// testApp bundles handlers sharing one database and a fixed clock
type testApp struct {
	db       *sql.DB
	metrics  *metrics.Metrics
	votes    *VoteHandler
	heatmap  *HeatmapHandler
	backfill *BackfillHandler
}

func newTestApp(t *testing.T, now time.Time) *testApp {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	st := store.New(conn)
	m := metrics.New(prometheus.NewRegistry())

	heatmapSvc := mood.NewHeatmapService(st, cache.NewMemoryCache(time.Minute))
	voteSvc := mood.NewVoteService(st, cfg.IdentitySecret, m, heatmapSvc)
	backfillSvc := mood.NewBackfillService(st, db.NewMutexLocker(), mood.NewRandom(1, 2), m, heatmapSvc)

	// httptest requests arrive from 192.0.2.1, which plays the load balancer
	proxies, err := middleware.ParseTrustedProxies([]string{"192.0.2.0/24", "10.0.0.0/8"})
	if err != nil {
		t.Fatal(err)
	}

	app := &testApp{
		db:       conn,
		metrics:  m,
		votes:    NewVoteHandler(voteSvc, proxies),
		heatmap:  NewHeatmapHandler(heatmapSvc),
		backfill: NewBackfillHandler(backfillSvc, cfg.AdminKey),
	}
	app.setNow(now)
	return app
}

func (a *testApp) setNow(now time.Time) {
	clock := func() time.Time { return now }
	a.votes.now = clock
	a.heatmap.now = clock
	a.backfill.now = clock
}

// client sets the request metadata identity is derived from
func client(req *http.Request, ip, ua string) *http.Request {
	req.RemoteAddr = ip + ":40000"
	req.Header.Set("User-Agent", ua)
	return req
}
