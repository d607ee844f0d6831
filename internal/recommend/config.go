// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/lyricsim/internal/textproc"
	"github.com/tomtom215/lyricsim/internal/vectorize"
)

// Config holds engine build and serving parameters.
type Config struct {
	Preprocess textproc.Options
	Vectorizer vectorize.Config
	Similarity SimilarityConfig

	// TopN is used when a request does not ask for a count.
	TopN int
	// MaxTopN caps what a request may ask for.
	MaxTopN int

	// Seed drives the random fallback sample.
	Seed int64

	// EnrichConcurrency bounds parallel catalog lookups per request.
	EnrichConcurrency int
	// LookupTimeout bounds each catalog lookup.
	LookupTimeout time.Duration
}

// SimilarityConfig controls the similarity matrix build.
type SimilarityConfig struct {
	// Path is where the matrix file is created. It is removed on Close.
	Path       string
	BatchSize  int
	FlushEvery int
	Workers    int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Preprocess: textproc.Options{BatchSize: 500, ProgressEvery: 2000},
		Vectorizer: vectorize.DefaultConfig(),
		Similarity: SimilarityConfig{
			Path:       "cosine_sim_temp.dat",
			BatchSize:  1000,
			FlushEvery: 2,
			Workers:    1,
		},
		TopN:              5,
		MaxTopN:           50,
		Seed:              42,
		EnrichConcurrency: 4,
		LookupTimeout:     5 * time.Second,
	}
}

// Validate checks the configuration.
//
//nolint:gocritic // config is small and read once
func (c Config) Validate() error {
	if c.Similarity.Path == "" {
		return fmt.Errorf("similarity.path is required")
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.MaxTopN < c.TopN {
		return fmt.Errorf("max_top_n must be >= top_n, got %d < %d", c.MaxTopN, c.TopN)
	}
	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("enrich_concurrency must be positive, got %d", c.EnrichConcurrency)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup_timeout must be positive, got %v", c.LookupTimeout)
	}
	if c.Vectorizer.MinDF <= 0 || c.Vectorizer.MaxDF <= 0 {
		return fmt.Errorf("vectorizer document frequency bounds must be positive")
	}
	return nil
}

// topN resolves the count for one request.
//
//nolint:gocritic // config is small
func (c Config) topN(requested int) int {
	if requested <= 0 {
		return c.TopN
	}
	if requested > c.MaxTopN {
		return c.MaxTopN
	}
	return requested
}
