// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

/*
Package catalog looks up track metadata in an external music catalog.

The production stack is layered from the outside in:

	CachedSearcher  memory LRU, then optional badger store
	BreakerSearcher gobreaker circuit breaker
	SpotifyClient   client-credentials OAuth2, token bucket rate limiter

Every layer implements Searcher, so the recommendation engine only sees the
interface. Noop stands in when the catalog is disabled.
*/
package catalog

import (
	"context"
	"errors"
)

// ErrNoCredentials is returned when the catalog is enabled without a client
// id or secret.
var ErrNoCredentials = errors.New("catalog credentials are not configured")

// Track is the descriptor returned to clients for one recommended song.
// CoverURL is nil when the catalog has no artwork.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	CoverURL *string `json:"coverUrl"`
}

// Searcher runs a free text track search and returns at most limit tracks.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Track, error)
}

// Noop is a Searcher that never finds anything.
type Noop struct{}

var _ Searcher = Noop{}

// Search returns an empty result.
func (Noop) Search(context.Context, string, int) ([]Track, error) {
	return []Track{}, nil
}
