// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	return db
}

func coverURL(s string) *string { return &s }

func TestCachedSearcher_MemoryHit(t *testing.T) {
	stub := &stubSearcher{tracks: []Track{{ID: "1", Title: "Imagine", Artist: "John Lennon", CoverURL: coverURL("u")}}}
	c := NewCachedSearcher(stub, CacheConfig{Size: 10, TTL: time.Hour}, zerolog.Nop())
	defer c.Close()

	for i := 0; i < 3; i++ {
		tracks, err := c.Search(context.Background(), "Imagine John Lennon", 1)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "1" {
			t.Fatalf("tracks = %+v", tracks)
		}
	}
	if stub.Calls() != 1 {
		t.Errorf("upstream calls = %d, want 1", stub.Calls())
	}

	stats := c.Stats()
	if stats.Hits != 2 || stats.Size != 1 || stats.Persistent {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCachedSearcher_KeyNormalization(t *testing.T) {
	stub := &stubSearcher{tracks: []Track{{ID: "1"}}}
	c := NewCachedSearcher(stub, CacheConfig{Size: 10, TTL: time.Hour}, zerolog.Nop())

	_, _ = c.Search(context.Background(), "Imagine", 1)
	_, _ = c.Search(context.Background(), "  imagine ", 1)
	_, _ = c.Search(context.Background(), "imagine", 5)

	if stub.Calls() != 2 {
		t.Errorf("upstream calls = %d, want 2 (case folded, limit distinct)", stub.Calls())
	}
}

func TestCachedSearcher_ErrorsNotCached(t *testing.T) {
	stub := &stubSearcher{err: errors.New("boom")}
	c := NewCachedSearcher(stub, CacheConfig{Size: 10, TTL: time.Hour}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := c.Search(context.Background(), "q", 1); err == nil {
			t.Fatal("Search() expected error")
		}
	}
	if stub.Calls() != 2 {
		t.Errorf("upstream calls = %d, want 2", stub.Calls())
	}
}

func TestCachedSearcher_EmptyResultCached(t *testing.T) {
	stub := &stubSearcher{}
	c := NewCachedSearcher(stub, CacheConfig{Size: 10, TTL: time.Hour}, zerolog.Nop())

	first, err := c.Search(context.Background(), "nothing", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if first == nil || len(first) != 0 {
		t.Errorf("first = %#v, want empty non-nil slice", first)
	}
	_, _ = c.Search(context.Background(), "nothing", 1)
	if stub.Calls() != 1 {
		t.Errorf("upstream calls = %d, want 1", stub.Calls())
	}
}

func TestCachedSearcher_ResultsAreCopies(t *testing.T) {
	stub := &stubSearcher{tracks: []Track{{ID: "1", Title: "Imagine"}}}
	c := NewCachedSearcher(stub, CacheConfig{Size: 10, TTL: time.Hour}, zerolog.Nop())

	tracks, _ := c.Search(context.Background(), "imagine", 1)
	tracks[0].Title = "mutated"

	again, _ := c.Search(context.Background(), "imagine", 1)
	if again[0].Title != "Imagine" {
		t.Errorf("cached title = %q, want Imagine", again[0].Title)
	}
}

func TestCachedSearcher_DiskTier(t *testing.T) {
	db := openTestDB(t)
	want := []Track{{ID: "1", Title: "Imagine", Artist: "John Lennon", CoverURL: coverURL("https://img")}}

	first := NewCachedSearcher(&stubSearcher{tracks: want}, CacheConfig{Size: 10, TTL: time.Hour, DB: db}, zerolog.Nop())
	if _, err := first.Search(context.Background(), "imagine", 1); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	// A fresh memory tier over the same store must be served from disk.
	upstream := &stubSearcher{err: errors.New("should not be called")}
	second := NewCachedSearcher(upstream, CacheConfig{Size: 10, TTL: time.Hour, DB: db}, zerolog.Nop())
	defer second.Close()

	got, err := second.Search(context.Background(), "imagine", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if upstream.Calls() != 0 {
		t.Errorf("upstream calls = %d, want 0", upstream.Calls())
	}
	if len(got) != 1 || got[0].ID != "1" || got[0].Artist != "John Lennon" {
		t.Fatalf("got = %+v", got)
	}
	if got[0].CoverURL == nil || *got[0].CoverURL != "https://img" {
		t.Errorf("CoverURL = %v, want https://img", got[0].CoverURL)
	}
	if !second.Stats().Persistent {
		t.Error("Stats().Persistent = false, want true")
	}
}

func TestCachedSearcher_RunGC(t *testing.T) {
	t.Run("memory only", func(t *testing.T) {
		c := NewCachedSearcher(&stubSearcher{}, CacheConfig{Size: 10, TTL: time.Hour}, zerolog.Nop())
		if _, err := c.RunGC(); err != nil {
			t.Errorf("RunGC() error = %v", err)
		}
	})

	t.Run("in-memory badger", func(t *testing.T) {
		c := NewCachedSearcher(&stubSearcher{}, CacheConfig{Size: 10, TTL: time.Hour, DB: openTestDB(t)}, zerolog.Nop())
		defer c.Close()
		if _, err := c.RunGC(); err != nil {
			t.Errorf("RunGC() error = %v", err)
		}
	})
}

func TestCachedSearcher_CloseIdempotent(t *testing.T) {
	c := NewCachedSearcher(&stubSearcher{}, CacheConfig{Size: 10, TTL: time.Hour, DB: openTestDB(t)}, zerolog.Nop())
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := c.RunGC(); err != nil {
		t.Errorf("RunGC() after Close error = %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	db, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNoop(t *testing.T) {
	tracks, err := Noop{}.Search(context.Background(), "anything", 5)
	if err != nil || tracks == nil || len(tracks) != 0 {
		t.Errorf("Noop.Search() = %#v, %v; want empty slice, nil", tracks, err)
	}
}
