// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package api

import (
	"context"
	"time"

	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/middleware"
	"github.com/tomtom215/lyricsim/internal/recommend"
)

// Recommender is the engine surface the handlers need.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) *recommend.Response
	Stats() recommend.Stats
}

// CacheStatsProvider reports catalog cache statistics.
type CacheStatsProvider interface {
	Stats() catalog.CacheStats
}

// BreakerStateProvider reports the catalog circuit breaker state.
type BreakerStateProvider interface {
	State() string
}

// HandlerOptions wires optional collaborators into a Handler.
type HandlerOptions struct {
	// Cache and Breaker are nil when the catalog is disabled.
	Cache   CacheStatsProvider
	Breaker BreakerStateProvider

	Performance *middleware.PerformanceMonitor

	// RequestTimeout bounds one /recommend call. Zero means no extra bound.
	RequestTimeout time.Duration
}

// Handler serves the HTTP endpoints.
type Handler struct {
	engine         Recommender
	cache          CacheStatsProvider
	breaker        BreakerStateProvider
	perf           *middleware.PerformanceMonitor
	requestTimeout time.Duration
	startTime      time.Time
}

// NewHandler creates a Handler. engine may be nil while the index is still
// being built; /recommend then answers 503 and readiness fails.
//
//nolint:gocritic // options passed by value
func NewHandler(engine Recommender, opts HandlerOptions) *Handler {
	return &Handler{
		engine:         engine,
		cache:          opts.Cache,
		breaker:        opts.Breaker,
		perf:           opts.Performance,
		requestTimeout: opts.RequestTimeout,
		startTime:      time.Now(),
	}
}
