// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/middleware"
	"github.com/tomtom215/lyricsim/internal/recommend"
)

// ReadyStatus is the readiness check payload.
type ReadyStatus struct {
	Ready          bool   `json:"ready"`
	Engine         bool   `json:"engine"`
	CircuitBreaker string `json:"circuit_breaker,omitempty"`
}

// StatsResponse is the /api/v1/stats payload.
type StatsResponse struct {
	Engine         recommend.Stats            `json:"engine"`
	Cache          *catalog.CacheStats        `json:"cache,omitempty"`
	CircuitBreaker string                     `json:"circuit_breaker,omitempty"`
	Endpoints      []middleware.EndpointStats `json:"endpoints"`
	UptimeSeconds  float64                    `json:"uptime_seconds"`
}

// HealthLive returns 200 while the process is up.
//
// @Summary Liveness check
// @Description Returns 200 while the process is alive, regardless of the engine or the catalog.
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Service is alive"
// @Router /api/v1/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 once the engine is built. An open catalog circuit
// does not make the service unready since recommendations degrade to local
// descriptors.
//
// @Summary Readiness check
// @Description Returns 200 once the similarity index is built, 503 before that.
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=ReadyStatus} "Service is ready"
// @Failure 503 {object} APIResponse{data=ReadyStatus} "Engine still building"
// @Router /api/v1/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := ReadyStatus{Engine: h.engine != nil}
	if h.breaker != nil {
		status.CircuitBreaker = h.breaker.State()
	}
	status.Ready = status.Engine

	if !status.Ready {
		NewResponseWriter(w, r).Unavailable(status)
		return
	}
	WriteSuccess(w, r, status)
}

// Stats reports engine build statistics, catalog cache counters and recent
// endpoint latencies.
//
// @Summary Engine statistics
// @Description Build statistics, catalog cache counters, circuit breaker state and per-endpoint latencies.
// @Tags Stats
// @Produce json
// @Success 200 {object} APIResponse{data=StatsResponse}
// @Failure 503 {object} APIResponse "Engine still building"
// @Router /api/v1/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgNotReady)
		return
	}

	resp := StatsResponse{
		Engine:        h.engine.Stats(),
		Endpoints:     []middleware.EndpointStats{},
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.cache != nil {
		cs := h.cache.Stats()
		resp.Cache = &cs
	}
	if h.breaker != nil {
		resp.CircuitBreaker = h.breaker.State()
	}
	if h.perf != nil {
		resp.Endpoints = h.perf.Stats()
	}

	WriteSuccess(w, r, resp)
}
