// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestPerformanceMonitor_Stats(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(100, 0, zerolog.Nop())
	for _, ms := range []int{10, 20, 30, 40} {
		pm.Record(RequestSample{Route: "/recommend", Method: http.MethodPost, Duration: time.Duration(ms) * time.Millisecond, StatusCode: 200})
	}
	pm.Record(RequestSample{Route: "/get", Method: http.MethodGet, Duration: time.Millisecond, StatusCode: 500})

	stats := pm.Stats()
	if len(stats) != 2 {
		t.Fatalf("len(Stats()) = %d, want 2", len(stats))
	}

	rec := stats[0]
	if rec.Endpoint != "POST /recommend" {
		t.Errorf("busiest endpoint = %q, want POST /recommend", rec.Endpoint)
	}
	if rec.RequestCount != 4 || rec.AvgMS != 25 || rec.MaxMS != 40 || rec.P50MS != 20 {
		t.Errorf("stats = %+v", rec)
	}
	if stats[1].Errors != 1 {
		t.Errorf("GET /get errors = %d, want 1", stats[1].Errors)
	}
}

func TestPerformanceMonitor_Window(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(3, 0, zerolog.Nop())
	for i := 0; i < 5; i++ {
		pm.Record(RequestSample{Route: "/r", Method: http.MethodGet, Duration: time.Duration(i) * time.Millisecond})
	}
	if pm.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", pm.Len())
	}
	stats := pm.Stats()
	if stats[0].RequestCount != 3 || stats[0].MaxMS != 4 {
		t.Errorf("stats = %+v, want 3 samples with max 4ms", stats[0])
	}
}

func TestPerformanceMonitor_Empty(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(0, 0, zerolog.Nop())
	if got := pm.Stats(); len(got) != 0 {
		t.Errorf("Stats() = %+v, want empty", got)
	}
}

func TestPerformanceMonitor_SlowLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pm := NewPerformanceMonitor(10, 5*time.Millisecond, zerolog.New(&buf))
	pm.Record(RequestSample{Route: "/fast", Method: http.MethodGet, Duration: time.Millisecond})
	pm.Record(RequestSample{Route: "/slow", Method: http.MethodGet, Duration: 50 * time.Millisecond})

	out := buf.String()
	if !strings.Contains(out, "/slow") || strings.Contains(out, "/fast") {
		t.Errorf("log output = %q, want only the slow request", out)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(10, 0, zerolog.Nop())
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/songs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/songs/7", http.NoBody))

	stats := pm.Stats()
	if len(stats) != 1 || stats[0].Endpoint != "GET /songs/{id}" {
		t.Errorf("stats = %+v, want GET /songs/{id}", stats)
	}
}

func TestPerformanceMonitor_Concurrent(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(50, 0, zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pm.Record(RequestSample{Route: "/r", Method: http.MethodGet})
				_ = pm.Stats()
			}
		}()
	}
	wg.Wait()

	if pm.Len() != 50 {
		t.Errorf("Len() = %d, want 50", pm.Len())
	}
}
