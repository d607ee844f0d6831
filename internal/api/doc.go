// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

/*
Package api exposes the recommendation engine over HTTP using the chi router.

# Endpoints

	POST /recommend            recommendations for {song, artist?, top_n?}
	GET  /get                  echo used by simple uptime checks
	GET  /api/v1/health/live   liveness check
	GET  /api/v1/health/ready  readiness check
	GET  /api/v1/stats         engine, cache and latency statistics
	GET  /metrics              Prometheus exposition

/recommend and /get keep their original flat JSON bodies so existing clients
keep working. Everything under /api/v1 uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}}

# Middleware

Every route passes through request ID assignment, real IP extraction, panic
recovery, CORS (go-chi/cors), Prometheus instrumentation and the latency
monitor. Application routes are rate limited per client IP with
go-chi/httprate; health checks and /metrics have a separate, looser limit.
*/
package api
