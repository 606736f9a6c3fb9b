package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trev-sykes/feels-aggregate/cache"
	"github.com/trev-sykes/feels-aggregate/cliparse"
	"github.com/trev-sykes/feels-aggregate/db"
	"github.com/trev-sykes/feels-aggregate/logger"
	"github.com/trev-sykes/feels-aggregate/metrics"
	"github.com/trev-sykes/feels-aggregate/middleware"
	"github.com/trev-sykes/feels-aggregate/mood"
	"github.com/trev-sykes/feels-aggregate/router"
	"github.com/trev-sykes/feels-aggregate/store"
)

func main() {
	// .env is optional; real environment variables win
	if err := cliparse.LoadDotEnv(); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		slog.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots := newSnapshotCache(ctx, cfg)
	if snapshots != nil {
		defer snapshots.Close()
	}

	// Wire services
	st := store.New(dbConn)
	m := metrics.New(prometheus.DefaultRegisterer)
	locker := db.NewLocker(cfg.DatabaseType, dbConn, cfg.BackfillLockID)

	heatmap := mood.NewHeatmapService(st, snapshots)
	votes := mood.NewVoteService(st, cfg.IdentitySecret, m, heatmap)
	backfill := mood.NewBackfillService(st, locker, mood.NewRandom(rand.Uint64(), rand.Uint64()), m, heatmap)

	if cfg.BackfillInterval > 0 {
		go func() {
			if err := backfill.Run(ctx, cfg.BackfillInterval, time.Now); err != nil {
				slog.Error("backfill loop stopped", "error", err)
			}
		}()
		slog.Info("backfill loop started", "interval", cfg.BackfillInterval)
	}

	// Create router
	mux := router.NewRouter(router.Deps{
		Votes:    votes,
		Heatmap:  heatmap,
		Backfill: backfill,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Proxies:  proxies,
	}, cfg)

	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              cfg.Addr(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "addr", server.Addr)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

// newSnapshotCache prefers Redis when configured and falls back to an
// in-process cache. A zero TTL disables caching.
func newSnapshotCache(ctx context.Context, cfg cliparse.Config) cache.SnapshotCache {
	if cfg.SnapshotTTL <= 0 {
		return nil
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.SnapshotTTL)
		if err == nil {
			slog.Info("snapshot cache: redis", "ttl", cfg.SnapshotTTL)
			return rc
		}
		slog.Warn("redis unavailable, using in-memory snapshot cache", "error", err)
	}

	slog.Info("snapshot cache: memory", "ttl", cfg.SnapshotTTL)
	return cache.NewMemoryCache(cfg.SnapshotTTL)
}
