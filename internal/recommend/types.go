// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package recommend

import (
	"time"

	"github.com/tomtom215/lyricsim/internal/catalog"
)

// Request is one recommendation query.
type Request struct {
	// Song is the title to search for. Required.
	Song string

	// Artist narrows the exact match. Optional.
	Artist string

	// TopN is the number of local recommendations. Zero means the engine
	// default; larger than the engine maximum is capped.
	TopN int
}

// Response is the body returned to clients. Both lists are always non-nil.
type Response struct {
	LocalRecommendations   []catalog.Track `json:"local_recommendations"`
	SpotifyRecommendations []catalog.Track `json:"spotify_recommendations"`
}

// MatchStage records how a query was resolved.
type MatchStage int

const (
	// StageNone means no row matched.
	StageNone MatchStage = iota
	// StageExactPair matched both song and artist exactly.
	StageExactPair
	// StageExactTitle matched the song title exactly.
	StageExactTitle
	// StageSubstring matched the query as a substring of a title.
	StageSubstring
)

// String returns the stage name used in logs and metrics.
func (s MatchStage) String() string {
	switch s {
	case StageExactPair:
		return "exact_pair"
	case StageExactTitle:
		return "exact_title"
	case StageSubstring:
		return "substring"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of Resolve. Index is only meaningful when Found.
type Resolution struct {
	Index int
	Found bool
	Stage MatchStage
}

// Candidate is one ranked row of the similarity matrix.
type Candidate struct {
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

// Stats describes a built engine.
type Stats struct {
	Songs          int           `json:"songs"`
	VocabularySize int           `json:"vocabulary_size"`
	NonZeros       int           `json:"non_zeros"`
	MatrixPath     string        `json:"matrix_path"`
	MatrixBytes    int64         `json:"matrix_bytes"`
	BuildDuration  time.Duration `json:"build_duration_ns"`
	BuiltAt        time.Time     `json:"built_at"`
}

// errorTrack replaces the local list when ranking fails unexpectedly.
var errorTrack = catalog.Track{
	ID:    "",
	Title: "Error processing local recommendations",
}
