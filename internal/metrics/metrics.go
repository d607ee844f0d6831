// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Engine build metrics
	EngineBuildStageDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_build_stage_duration_seconds",
			Help: "Duration of the last run of each engine build stage",
		},
		[]string{"stage"}, // load, preprocess, vectorize, similarity
	)

	EngineSongs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_songs",
			Help: "Number of songs in the similarity index",
		},
	)

	EngineVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_vocabulary_size",
			Help: "Number of terms in the TF-IDF vocabulary",
		},
	)

	SimilarityMatrixBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "similarity_matrix_bytes",
			Help: "Size of the on-disk similarity matrix",
		},
	)

	// Recommendation metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation requests by how the query song was resolved",
		},
		[]string{"resolution"}, // exact_pair, exact_title, substring, unresolved, error
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to produce a full recommendation response",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	EnrichmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichments_total",
			Help: "Candidate enrichments by source of the returned descriptor",
		},
		[]string{"source"}, // catalog, local
	)

	// Catalog metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Outbound catalog API requests",
		},
		[]string{"operation", "result"}, // result: success, error
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Outbound catalog API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Catalog lookups answered from cache",
		},
		[]string{"tier"}, // memory, disk
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Catalog lookups that reached the API",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBuildStage records how long an engine build stage took.
func RecordBuildStage(stage string, duration time.Duration) {
	EngineBuildStageDuration.WithLabelValues(stage).Set(duration.Seconds())
}

// RecordRecommendation counts one recommendation by resolution outcome.
func RecordRecommendation(resolution string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(resolution).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordEnrichment counts one enriched candidate by descriptor source.
func RecordEnrichment(source string) {
	EnrichmentsTotal.WithLabelValues(source).Inc()
}

// RecordCatalogRequest records an outbound catalog API call.
func RecordCatalogRequest(operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	CatalogRequestsTotal.WithLabelValues(operation, result).Inc()
	CatalogRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
