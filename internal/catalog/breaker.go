// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lyricsim/internal/metrics"
)

// BreakerSettings controls when the circuit opens.
type BreakerSettings struct {
	Name        string
	MaxRequests uint32        // concurrent trial requests allowed while half-open
	Interval    time.Duration // count reset period while closed
	Timeout     time.Duration // open period before probing again
	MinRequests uint32        // requests needed before the ratio is trusted
	FailureRate float64       // trip at or above this failure ratio
}

// DefaultBreakerSettings mirrors the settings used for every upstream API:
// 3 trial requests, a 1 minute window, a 2 minute cool-down, tripping at 60%
// failures over at least 10 requests.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:        "spotify-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		MinRequests: 10,
		FailureRate: 0.6,
	}
}

// BreakerSearcher wraps a Searcher with a circuit breaker. While open,
// Search fails immediately with gobreaker.ErrOpenState.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations.
type BreakerSearcher struct {
	next   Searcher
	cb     *gobreaker.CircuitBreaker[[]Track]
	name   string
	logger zerolog.Logger
}

var _ Searcher = (*BreakerSearcher)(nil)

// NewBreakerSearcher wraps next.
func NewBreakerSearcher(next Searcher, settings BreakerSettings, logger zerolog.Logger) *BreakerSearcher {
	logger = logger.With().Str("component", "circuit_breaker").Str("name", settings.Name).Logger()
	name := settings.Name

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]Track](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= settings.FailureRate
			if shouldTrip {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening catalog circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] Catalog state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		// A caller giving up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerSearcher{
		next:   next,
		cb:     cb,
		name:   name,
		logger: logger,
	}
}

// Search forwards to the wrapped Searcher unless the circuit is open.
func (b *BreakerSearcher) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	tracks, err := b.cb.Execute(func() ([]Track, error) {
		return b.next.Search(ctx, query, limit)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Debug().Err(err).Msg("[CIRCUIT BREAKER] Catalog request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return tracks, nil
}

// State returns the current breaker state as closed, half-open or open.
func (b *BreakerSearcher) State() string {
	return stateToString(b.cb.State())
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
