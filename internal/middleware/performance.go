// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RequestSample is one observed request.
type RequestSample struct {
	Route      string
	Method     string
	Duration   time.Duration
	StatusCode int
}

// EndpointStats aggregates the samples of one method and route.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	P99MS        int64   `json:"p99_ms"`
	MaxMS        int64   `json:"max_ms"`
	Errors       int64   `json:"errors"`
}

// PerformanceMonitor keeps a rolling window of recent request latencies and
// warns about requests slower than a threshold. Recommendation latency is
// dominated by catalog lookups, so this is what the stats endpoint reports.
type PerformanceMonitor struct {
	mu      sync.RWMutex
	samples []RequestSample
	next    int
	full    bool

	slow   time.Duration
	logger zerolog.Logger
}

// NewPerformanceMonitor keeps up to window samples. A zero slow threshold
// disables slow-request logging.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPerformanceMonitor(window int, slow time.Duration, logger zerolog.Logger) *PerformanceMonitor {
	if window < 1 {
		window = 1000
	}
	return &PerformanceMonitor{
		samples: make([]RequestSample, window),
		slow:    slow,
		logger:  logger.With().Str("component", "performance").Logger(),
	}
}

// Record adds a sample, overwriting the oldest once the window is full.
func (pm *PerformanceMonitor) Record(s RequestSample) {
	pm.mu.Lock()
	pm.samples[pm.next] = s
	pm.next++
	if pm.next == len(pm.samples) {
		pm.next = 0
		pm.full = true
	}
	pm.mu.Unlock()

	if pm.slow > 0 && s.Duration > pm.slow {
		pm.logger.Warn().
			Str("method", s.Method).
			Str("route", s.Route).
			Dur("duration", s.Duration).
			Dur("threshold", pm.slow).
			Msg("Slow request detected")
	}
}

// Len returns the number of samples held.
func (pm *PerformanceMonitor) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	if pm.full {
		return len(pm.samples)
	}
	return pm.next
}

// Stats aggregates the window per endpoint, busiest first.
func (pm *PerformanceMonitor) Stats() []EndpointStats {
	pm.mu.RLock()
	n := pm.next
	if pm.full {
		n = len(pm.samples)
	}
	grouped := make(map[string][]RequestSample)
	for _, s := range pm.samples[:n] {
		key := s.Method + " " + s.Route
		grouped[key] = append(grouped[key], s)
	}
	pm.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(grouped))
	for endpoint, samples := range grouped {
		durations := make([]int64, len(samples))
		var sum, errs int64
		for i, s := range samples {
			durations[i] = s.Duration.Milliseconds()
			sum += durations[i]
			if s.StatusCode >= http.StatusInternalServerError {
				errs++
			}
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(durations)),
			AvgMS:        float64(sum) / float64(len(durations)),
			P50MS:        percentile(durations, 0.50),
			P95MS:        percentile(durations, 0.95),
			P99MS:        percentile(durations, 0.99),
			MaxMS:        durations[len(durations)-1],
			Errors:       errs,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Middleware records every request passing through it.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		pm.Record(RequestSample{
			Route:      routePattern(r),
			Method:     r.Method,
			Duration:   time.Since(start),
			StatusCode: wrapper.statusCode,
		})
	})
}

// percentile expects sorted input
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
