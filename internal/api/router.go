// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/lyricsim/internal/middleware"
)

// RouterConfig holds CORS and rate limiting settings.
type RouterConfig struct {
	CORSOrigins []string
	CORSMaxAge  int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	// HealthRateLimitRequests applies to health checks and /metrics within
	// RateLimitWindow.
	HealthRateLimitRequests int
}

// DefaultRouterConfig allows any origin and 120 requests per minute per IP.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSOrigins:             []string{"*"},
		CORSMaxAge:              86400,
		RateLimitRequests:       120,
		RateLimitWindow:         time.Minute,
		HealthRateLimitRequests: 1000,
	}
}

// NewRouter builds the chi router for h.
//
//nolint:gocritic // config passed by value
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(cfg))
	r.Use(middleware.PrometheusMetrics)
	if h.perf != nil {
		r.Use(h.perf.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimitRequests, cfg))
		r.Post("/recommend", h.Recommend)
		r.Get("/get", h.Get)
		r.Get("/api/v1/stats", h.Stats)
	})

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(cfg.HealthRateLimitRequests, cfg))
		r.Get("/api/v1/health/live", h.HealthLive)
		r.Get("/api/v1/health/ready", h.HealthReady)
		r.Handle("/metrics", promhttp.Handler())
	})

	return r
}

//nolint:gocritic // config passed by value
func corsHandler(cfg RouterConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         cfg.CORSMaxAge,
	})
}

// rateLimit limits requests per client IP. RealIP runs first, so proxied
// clients are keyed by their forwarded address.
//
//nolint:gocritic // config passed by value
func rateLimit(requests int, cfg RouterConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled || requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
		}),
	)
}
