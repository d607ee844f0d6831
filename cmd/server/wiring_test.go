// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/config"
)

func TestBuildEngineConfig(t *testing.T) {
	cfg := config.EngineConfig{
		PreprocessBatchSize: 10,
		ProgressEvery:       20,
		MaxFeatures:         300,
		MinDF:               2,
		MaxDF:               0.5,
		SimilarityBatchSize: 64,
		FlushEvery:          3,
		MatrixPath:          "/tmp/sim.dat",
		SimilarityWorkers:   2,
		TopN:                7,
		MaxTopN:             70,
		Seed:                9,
		EnrichConcurrency:   3,
		LookupTimeout:       2 * time.Second,
	}

	got := buildEngineConfig(&cfg)

	if got.Preprocess.BatchSize != 10 || got.Preprocess.ProgressEvery != 20 {
		t.Errorf("Preprocess = %+v", got.Preprocess)
	}
	if got.Vectorizer.MaxFeatures != 300 || got.Vectorizer.MinDF != 2 || got.Vectorizer.MaxDF != 0.5 {
		t.Errorf("Vectorizer = %+v", got.Vectorizer)
	}
	if got.Similarity.Path != "/tmp/sim.dat" || got.Similarity.BatchSize != 64 || got.Similarity.FlushEvery != 3 || got.Similarity.Workers != 2 {
		t.Errorf("Similarity = %+v", got.Similarity)
	}
	if got.TopN != 7 || got.MaxTopN != 70 || got.Seed != 9 {
		t.Errorf("TopN/MaxTopN/Seed = %d/%d/%d", got.TopN, got.MaxTopN, got.Seed)
	}
	if got.EnrichConcurrency != 3 || got.LookupTimeout != 2*time.Second {
		t.Errorf("enrichment = %d/%v", got.EnrichConcurrency, got.LookupTimeout)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuildRouterConfig(t *testing.T) {
	tests := []struct {
		name        string
		sec         config.SecurityConfig
		wantOrigins []string
	}{
		{
			name:        "explicit origins",
			sec:         config.SecurityConfig{CORSOrigins: []string{"https://a.example"}, RateLimitReqs: 10, RateLimitWindow: time.Second},
			wantOrigins: []string{"https://a.example"},
		},
		{
			name:        "empty origins keep default",
			sec:         config.SecurityConfig{RateLimitReqs: 10, RateLimitWindow: time.Second, RateLimitDisabled: true},
			wantOrigins: []string{"*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildRouterConfig(&tt.sec)
			if len(got.CORSOrigins) != len(tt.wantOrigins) || got.CORSOrigins[0] != tt.wantOrigins[0] {
				t.Errorf("CORSOrigins = %v, want %v", got.CORSOrigins, tt.wantOrigins)
			}
			if got.RateLimitRequests != 10 || got.RateLimitWindow != time.Second {
				t.Errorf("rate limit = %d/%v", got.RateLimitRequests, got.RateLimitWindow)
			}
			if got.RateLimitDisabled != tt.sec.RateLimitDisabled {
				t.Errorf("RateLimitDisabled = %v", got.RateLimitDisabled)
			}
			if got.HealthRateLimitRequests == 0 {
				t.Error("HealthRateLimitRequests should keep its default")
			}
		})
	}
}

func TestInitCatalog_Disabled(t *testing.T) {
	comps, err := initCatalog(context.Background(), &config.CatalogConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("initCatalog() error = %v", err)
	}
	if _, ok := comps.Searcher.(catalog.Noop); !ok {
		t.Errorf("Searcher = %T, want catalog.Noop", comps.Searcher)
	}
	if comps.Cache != nil || comps.Breaker != nil {
		t.Error("disabled catalog should not build cache or breaker")
	}
	if err := comps.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestInitCatalog_MissingCredentials(t *testing.T) {
	_, err := initCatalog(context.Background(), &config.CatalogConfig{Enabled: true}, zerolog.Nop())
	if !errors.Is(err, catalog.ErrNoCredentials) {
		t.Errorf("initCatalog() error = %v, want ErrNoCredentials", err)
	}
}

func tokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"t","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInitCatalog_RejectedCredentials(t *testing.T) {
	srv := tokenServer(t, http.StatusUnauthorized)
	cfg := &config.CatalogConfig{
		Enabled:      true,
		ClientID:     "id",
		ClientSecret: "wrong",
		TokenURL:     srv.URL,
		BaseURL:      srv.URL,
		Timeout:      time.Second,
	}

	if _, err := initCatalog(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("initCatalog() should fail when the token request is rejected")
	}
}

func TestInitCatalog_Enabled(t *testing.T) {
	srv := tokenServer(t, http.StatusOK)
	cfg := &config.CatalogConfig{
		Enabled:      true,
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL,
		BaseURL:      srv.URL,
		Timeout:      time.Second,
		CacheSize:    10,
		CacheTTL:     time.Minute,
		CachePath:    filepath.Join(t.TempDir(), "cache"),
	}

	comps, err := initCatalog(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initCatalog() error = %v", err)
	}
	defer func() { _ = comps.Close() }()

	if comps.Cache == nil || comps.Breaker == nil {
		t.Fatal("enabled catalog should build cache and breaker")
	}
	if comps.Searcher != catalog.Searcher(comps.Cache) {
		t.Error("Searcher should be the cache layer")
	}
	if !comps.Cache.Stats().Persistent {
		t.Error("cache should report a persistent tier")
	}
	if got := comps.Breaker.State(); got != "closed" {
		t.Errorf("Breaker.State() = %q, want closed", got)
	}
}
