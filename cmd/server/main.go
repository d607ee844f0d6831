// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/lyricsim/internal/api"
	"github.com/tomtom215/lyricsim/internal/config"
	"github.com/tomtom215/lyricsim/internal/logging"
	"github.com/tomtom215/lyricsim/internal/middleware"
	"github.com/tomtom215/lyricsim/internal/supervisor"
	"github.com/tomtom215/lyricsim/internal/supervisor/services"
)

const (
	// perfWindow is the number of recent requests kept for /api/v1/stats.
	perfWindow = 1000
	// slowRequest is logged at warn level.
	slowRequest = 2 * time.Second
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("dataset", cfg.Dataset.Path).
		Int("subset_size", cfg.Dataset.SubsetSize).
		Bool("spotify_enabled", cfg.Catalog.Enabled).
		Msg("Starting Lyricsim")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogs, err := initCatalog(ctx, &cfg.Catalog, logging.WithComponent("catalog"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize Spotify catalog")
	}

	engine, err := initEngine(ctx, cfg, catalogs.Searcher, logging.WithComponent("engine"))
	if err != nil {
		// Fatal skips defers
		closeCatalog(catalogs)
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logging.Error().Err(err).Msg("Error removing similarity file")
		}
	}()
	defer closeCatalog(catalogs)

	perf := middleware.NewPerformanceMonitor(perfWindow, slowRequest, logging.WithComponent("performance"))
	opts := api.HandlerOptions{
		Performance:    perf,
		RequestTimeout: cfg.Engine.RequestTimeout,
	}
	// Leave the interfaces nil rather than holding typed nil pointers.
	if catalogs.Cache != nil {
		opts.Cache = catalogs.Cache
	}
	if catalogs.Breaker != nil {
		opts.Breaker = catalogs.Breaker
	}
	handler := api.NewHandler(engine, opts)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, buildRouterConfig(&cfg.Security)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + 5*time.Second
	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.WithComponent("supervisor")), treeCfg)

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	if catalogs.Cache != nil && cfg.Catalog.CachePath != "" {
		tree.AddMaintenanceService(services.NewCacheGCService(catalogs.Cache, cfg.Catalog.CacheGCInterval, logging.WithComponent("cache_gc")))
		logging.Info().Dur("interval", cfg.Catalog.CacheGCInterval).Msg("Cache GC service added")
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The channel carries a single result and is never closed.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

func closeCatalog(c *CatalogComponents) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing catalog cache")
	}
}
