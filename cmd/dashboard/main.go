// Command dashboard serves dashboard views derived from the shared feed file.
// Configuration comes from the environment.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/sales-feed-service/internal/adapter/http"
	"github.com/couchcryptid/sales-feed-service/internal/adapter/mapbox"
	"github.com/couchcryptid/sales-feed-service/internal/config"
	"github.com/couchcryptid/sales-feed-service/internal/dashboard"
	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
	"github.com/couchcryptid/sales-feed-service/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var source snapshot.Source
	switch cfg.SnapshotMode {
	case config.SnapshotModeIncremental:
		source = snapshot.NewTailSource(cfg.FeedFile, cfg.Location)
	default:
		source = snapshot.NewFileSource(cfg.FeedFile, cfg.Location)
	}
	cache := snapshot.NewCache(source, cfg.SnapshotTTL, logger, metrics)
	builder := dashboard.NewBuilder(geocoder, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cache, builder, cfg.Location, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("serving feed", "path", cfg.FeedFile, "mode", cfg.SnapshotMode, "ttl", cfg.SnapshotTTL)

	// Warm the cache so /readyz reflects whether the feed is readable.
	if _, err := cache.Get(ctx); err != nil {
		logger.Warn("initial snapshot load failed", "error", err)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
