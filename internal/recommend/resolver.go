// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package recommend

import (
	"strings"

	"github.com/tomtom215/lyricsim/internal/dataset"
)

// Resolve finds the corpus row for a query by scanning songs in order.
// Both inputs are normalized first; songs are expected to be normalized
// already, as dataset.Load returns them.
//
// With an artist the stages are exact pair, then substring of the title.
// Without one they are exact title, then substring. An artist that does not
// match exactly therefore never falls back to an exact title match.
func Resolve(songs []dataset.Song, song, artist string) Resolution {
	song = dataset.Normalize(song)
	artist = dataset.Normalize(artist)

	if artist != "" {
		for i := range songs {
			if songs[i].Song == song && songs[i].Artist == artist {
				return Resolution{Index: i, Found: true, Stage: StageExactPair}
			}
		}
	} else {
		for i := range songs {
			if songs[i].Song == song {
				return Resolution{Index: i, Found: true, Stage: StageExactTitle}
			}
		}
	}

	for i := range songs {
		if strings.Contains(songs[i].Song, song) {
			return Resolution{Index: i, Found: true, Stage: StageSubstring}
		}
	}
	return Resolution{Stage: StageNone}
}

// Resolver answers the exact stages of Resolve from hash indexes and only
// scans for substring matches. It returns the same Resolution as Resolve.
type Resolver struct {
	songs   []dataset.Song
	byTitle map[string]int
	byPair  map[songKey]int
}

type songKey struct {
	song   string
	artist string
}

// NewResolver indexes songs. The slice must not be modified afterwards.
func NewResolver(songs []dataset.Song) *Resolver {
	r := &Resolver{
		songs:   songs,
		byTitle: make(map[string]int, len(songs)),
		byPair:  make(map[songKey]int, len(songs)),
	}
	for i := range songs {
		if _, ok := r.byTitle[songs[i].Song]; !ok {
			r.byTitle[songs[i].Song] = i
		}
		key := songKey{songs[i].Song, songs[i].Artist}
		if _, ok := r.byPair[key]; !ok {
			r.byPair[key] = i
		}
	}
	return r
}

// Resolve implements the same staged lookup as the package level Resolve.
func (r *Resolver) Resolve(song, artist string) Resolution {
	song = dataset.Normalize(song)
	artist = dataset.Normalize(artist)

	if artist != "" {
		if i, ok := r.byPair[songKey{song, artist}]; ok {
			return Resolution{Index: i, Found: true, Stage: StageExactPair}
		}
	} else if i, ok := r.byTitle[song]; ok {
		return Resolution{Index: i, Found: true, Stage: StageExactTitle}
	}

	for i := range r.songs {
		if strings.Contains(r.songs[i].Song, song) {
			return Resolution{Index: i, Found: true, Stage: StageSubstring}
		}
	}
	return Resolution{Stage: StageNone}
}
