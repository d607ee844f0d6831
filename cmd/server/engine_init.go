// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lyricsim/internal/api"
	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/config"
	"github.com/tomtom215/lyricsim/internal/dataset"
	"github.com/tomtom215/lyricsim/internal/recommend"
	"github.com/tomtom215/lyricsim/internal/textproc"
	"github.com/tomtom215/lyricsim/internal/vectorize"
)

// buildEngineConfig maps the engine section onto recommend.Config.
func buildEngineConfig(cfg *config.EngineConfig) recommend.Config {
	return recommend.Config{
		Preprocess: textproc.Options{
			BatchSize:     cfg.PreprocessBatchSize,
			ProgressEvery: cfg.ProgressEvery,
		},
		Vectorizer: vectorize.Config{
			MaxFeatures: cfg.MaxFeatures,
			MinDF:       cfg.MinDF,
			MaxDF:       cfg.MaxDF,
		},
		Similarity: recommend.SimilarityConfig{
			Path:       cfg.MatrixPath,
			BatchSize:  cfg.SimilarityBatchSize,
			FlushEvery: cfg.FlushEvery,
			Workers:    cfg.SimilarityWorkers,
		},
		TopN:              cfg.TopN,
		MaxTopN:           cfg.MaxTopN,
		Seed:              cfg.Seed,
		EnrichConcurrency: cfg.EnrichConcurrency,
		LookupTimeout:     cfg.LookupTimeout,
	}
}

// buildRouterConfig maps the security section onto the router settings.
func buildRouterConfig(cfg *config.SecurityConfig) api.RouterConfig {
	rc := api.DefaultRouterConfig()
	if len(cfg.CORSOrigins) > 0 {
		rc.CORSOrigins = cfg.CORSOrigins
	}
	rc.RateLimitRequests = cfg.RateLimitReqs
	rc.RateLimitWindow = cfg.RateLimitWindow
	rc.RateLimitDisabled = cfg.RateLimitDisabled
	return rc
}

// initEngine loads the corpus and builds the similarity index.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(ctx context.Context, cfg *config.Config, searcher catalog.Searcher, logger zerolog.Logger) (*recommend.Engine, error) {
	songs, err := dataset.Load(ctx, dataset.Options{
		Path:       cfg.Dataset.Path,
		SubsetSize: cfg.Dataset.SubsetSize,
		Seed:       cfg.Dataset.SampleSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info().
		Str("path", cfg.Dataset.Path).
		Int("songs", len(songs)).
		Int64("matrix_bytes", int64(len(songs))*int64(len(songs))*4).
		Msg("Dataset loaded")

	engine, err := recommend.NewEngine(ctx, buildEngineConfig(&cfg.Engine), songs, searcher, logger)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, nil
}
