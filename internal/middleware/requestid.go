// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

// Package middleware provides HTTP middleware shared by the API router:
// request IDs, Prometheus instrumentation and a rolling latency monitor.
package middleware

import (
	"net/http"

	"github.com/tomtom215/lyricsim/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds IDs accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestID assigns each request an ID, reusing a sane X-Request-ID from
// upstream when present. The ID is echoed in the response header. The request
// context carries the ID and a logger tagged with it, read via logging.Ctx.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithLogger(ctx, logging.Logger().With().Str("request_id", requestID).Logger())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
