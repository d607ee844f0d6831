// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/middleware"
	"github.com/tomtom215/lyricsim/internal/recommend"
)

type fakeRecommender struct {
	mu       sync.Mutex
	requests []recommend.Request
	deadline bool
	resp     *recommend.Response
}

func (f *fakeRecommender) Recommend(ctx context.Context, req recommend.Request) *recommend.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	if f.resp != nil {
		return f.resp
	}
	return &recommend.Response{
		LocalRecommendations:   []catalog.Track{{ID: "local_2", Title: "dream on", Artist: "tribute band"}},
		SpotifyRecommendations: []catalog.Track{},
	}
}

func (f *fakeRecommender) Stats() recommend.Stats {
	return recommend.Stats{Songs: 4, VocabularySize: 12, MatrixPath: "sim.dat", MatrixBytes: 64}
}

func (f *fakeRecommender) Requests() []recommend.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recommend.Request(nil), f.requests...)
}

type fakeCache struct{}

func (fakeCache) Stats() catalog.CacheStats {
	return catalog.CacheStats{Hits: 3, Misses: 1, Size: 2}
}

type fakeBreaker string

func (b fakeBreaker) State() string { return string(b) }

func newTestHandler(engine Recommender) *Handler {
	return NewHandler(engine, HandlerOptions{
		Cache:          fakeCache{},
		Breaker:        fakeBreaker("closed"),
		Performance:    middleware.NewPerformanceMonitor(100, 0, zerolog.Nop()),
		RequestTimeout: time.Second,
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestRecommend_Success(t *testing.T) {
	t.Parallel()

	engine := &fakeRecommender{}
	h := newTestHandler(engine)

	req := httptest.NewRequest(http.MethodPost, "/recommend",
		strings.NewReader(`{"song":"  Imagine ","artist":"John Lennon","top_n":3}`))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var body map[string][]catalog.Track
	decodeBody(t, rec, &body)
	if len(body["local_recommendations"]) != 1 || body["local_recommendations"][0].ID != "local_2" {
		t.Errorf("local_recommendations = %+v", body["local_recommendations"])
	}
	if got, ok := body["spotify_recommendations"]; !ok || got == nil {
		t.Errorf("spotify_recommendations missing or null in %s", rec.Body.String())
	}

	reqs := engine.Requests()
	if len(reqs) != 1 {
		t.Fatalf("engine called %d times, want 1", len(reqs))
	}
	want := recommend.Request{Song: "Imagine", Artist: "John Lennon", TopN: 3}
	if reqs[0] != want {
		t.Errorf("engine request = %+v, want %+v", reqs[0], want)
	}
	if !engine.deadline {
		t.Error("engine context has no deadline")
	}
}

func TestRecommend_CoverURLSerialization(t *testing.T) {
	t.Parallel()

	cover := "https://img.example/a.jpg"
	engine := &fakeRecommender{resp: &recommend.Response{
		LocalRecommendations: []catalog.Track{
			{ID: "sp1", Title: "A", Artist: "B", CoverURL: &cover},
			{ID: "local_0", Title: "C", Artist: "D"},
		},
		SpotifyRecommendations: []catalog.Track{},
	}}
	h := newTestHandler(engine)

	rec := httptest.NewRecorder()
	h.Recommend(rec, httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"song":"x"}`)))

	out := rec.Body.String()
	if !strings.Contains(out, `"coverUrl":"https://img.example/a.jpg"`) {
		t.Errorf("body %s missing cover url", out)
	}
	if !strings.Contains(out, `"coverUrl":null`) {
		t.Errorf("body %s missing null cover url", out)
	}
}

func TestRecommend_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"empty body", ``, http.StatusBadRequest, msgSongRequired},
		{"missing song", `{"artist":"John Lennon"}`, http.StatusBadRequest, msgSongRequired},
		{"empty song", `{"song":""}`, http.StatusBadRequest, msgSongRequired},
		{"whitespace song", `{"song":"   "}`, http.StatusBadRequest, msgSongRequired},
		{"malformed json", `{"song":`, http.StatusBadRequest, msgInvalidJSON},
		{"wrong type", `{"song":42}`, http.StatusBadRequest, msgInvalidJSON},
		{"negative top_n", `{"song":"x","top_n":-2}`, http.StatusBadRequest, "top_n must be at least 1"},
		{"too large", `{"song":"` + strings.Repeat("a", maxRequestBody) + `"}`, http.StatusRequestEntityTooLarge, msgTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeRecommender{}
			h := newTestHandler(engine)

			rec := httptest.NewRecorder()
			h.Recommend(rec, httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body flatError
			decodeBody(t, rec, &body)
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if n := len(engine.Requests()); n != 0 {
				t.Errorf("engine called %d times, want 0", n)
			}
		})
	}
}

func TestRecommend_NotReady(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	h.Recommend(rec, httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"song":"x"}`)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&fakeRecommender{})
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/get", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] != "GET request received" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		engine     Recommender
		handler    func(*Handler) http.HandlerFunc
		wantStatus int
		wantOK     bool
	}{
		{"live", &fakeRecommender{}, func(h *Handler) http.HandlerFunc { return h.HealthLive }, http.StatusOK, true},
		{"live without engine", nil, func(h *Handler) http.HandlerFunc { return h.HealthLive }, http.StatusOK, true},
		{"ready", &fakeRecommender{}, func(h *Handler) http.HandlerFunc { return h.HealthReady }, http.StatusOK, true},
		{"not ready", nil, func(h *Handler) http.HandlerFunc { return h.HealthReady }, http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(tt.engine)
			rec := httptest.NewRecorder()
			tt.handler(h)(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body APIResponse
			decodeBody(t, rec, &body)
			if body.Success != tt.wantOK {
				t.Errorf("success = %v, want %v", body.Success, tt.wantOK)
			}
			if body.Meta == nil || body.Meta.Timestamp.IsZero() {
				t.Error("meta timestamp missing")
			}
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&fakeRecommender{})
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Success bool          `json:"success"`
		Data    StatsResponse `json:"data"`
	}
	decodeBody(t, rec, &body)

	if !body.Success {
		t.Error("success = false")
	}
	if body.Data.Engine.Songs != 4 || body.Data.Engine.MatrixBytes != 64 {
		t.Errorf("engine stats = %+v", body.Data.Engine)
	}
	if body.Data.Cache == nil || body.Data.Cache.Hits != 3 {
		t.Errorf("cache stats = %+v", body.Data.Cache)
	}
	if body.Data.CircuitBreaker != "closed" {
		t.Errorf("circuit_breaker = %q", body.Data.CircuitBreaker)
	}
	if body.Data.Endpoints == nil {
		t.Error("endpoints is null")
	}
}

func TestStats_NotReady(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var body APIResponse
	decodeBody(t, rec, &body)
	if body.Error == nil || body.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v", body.Error)
	}
}
