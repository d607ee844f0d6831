// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// GarbageCollector is implemented by catalog.CachedSearcher.
type GarbageCollector interface {
	// RunGC drops expired entries and compacts persistent storage. It
	// returns the number of value log files rewritten.
	RunGC() (int, error)
}

// CacheGCService runs cache garbage collection on a fixed interval.
type CacheGCService struct {
	gc       GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheGCService creates the service. A non-positive interval means 10m.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCacheGCService(gc GarbageCollector, interval time.Duration, logger zerolog.Logger) *CacheGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheGCService{
		gc:       gc,
		interval: interval,
		logger:   logger.With().Str("service", "cache-gc").Logger(),
	}
}

// Serve implements suture.Service. GC failures are logged and retried on
// the next tick rather than restarting the service.
func (s *CacheGCService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("Cache GC service starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *CacheGCService) runOnce() {
	start := time.Now()
	rewritten, err := s.gc.RunGC()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache GC failed")
		return
	}
	s.logger.Debug().Int("rewritten", rewritten).Dur("duration", time.Since(start)).Msg("Cache GC complete")
}

// String names the service in supervisor logs.
func (s *CacheGCService) String() string {
	return "cache-gc"
}
