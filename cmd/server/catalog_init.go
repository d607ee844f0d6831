// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/config"
)

// CatalogComponents holds the catalog lookup stack. Cache and Breaker are
// nil when the catalog is disabled.
type CatalogComponents struct {
	Searcher catalog.Searcher
	Cache    *catalog.CachedSearcher
	Breaker  *catalog.BreakerSearcher
}

// Close releases the cache and its badger store.
func (c *CatalogComponents) Close() error {
	if c == nil || c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// spotifyConfig maps the catalog section onto the client settings.
func spotifyConfig(cfg *config.CatalogConfig) catalog.SpotifyConfig {
	return catalog.SpotifyConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		BaseURL:      cfg.BaseURL,
		Market:       cfg.Market,
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
	}
}

// initCatalog builds client -> breaker -> cache. The credentials are checked
// with a token fetch so a bad secret fails startup instead of every lookup.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initCatalog(ctx context.Context, cfg *config.CatalogConfig, logger zerolog.Logger) (*CatalogComponents, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Spotify catalog disabled (SPOTIFY_ENABLED=false)")
		return &CatalogComponents{Searcher: catalog.Noop{}}, nil
	}

	client, err := catalog.NewSpotifyClient(spotifyConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("create spotify client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("spotify credentials rejected: %w", err)
	}
	logger.Info().Str("api", cfg.BaseURL).Msg("Connected to Spotify")

	breaker := catalog.NewBreakerSearcher(client, catalog.DefaultBreakerSettings(), logger)

	cacheCfg := catalog.CacheConfig{
		Size: cfg.CacheSize,
		TTL:  cfg.CacheTTL,
	}
	if cfg.CachePath != "" {
		db, err := catalog.OpenStore(cfg.CachePath)
		if err != nil {
			return nil, err
		}
		cacheCfg.DB = db
		logger.Info().Str("path", cfg.CachePath).Msg("Persistent catalog cache enabled")
	}
	cached := catalog.NewCachedSearcher(breaker, cacheCfg, logger)

	return &CatalogComponents{
		Searcher: cached,
		Cache:    cached,
		Breaker:  breaker,
	}, nil
}
