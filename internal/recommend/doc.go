// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

// Package recommend turns a lyrics corpus into song recommendations.
//
// # Architecture
//
// NewEngine runs the build pipeline once:
//
//   - Preprocess: normalize, drop stopwords and short tokens, stem
//   - Vectorize: TF-IDF with document frequency bounds and a feature cap
//   - Similarity: full N×N cosine matrix written to a flat file and mapped
//
// After construction the engine is read-only. A request is served by
// resolving the query to a row, ranking that row of the similarity matrix and
// enriching each candidate with catalog metadata.
//
// # Resolution
//
// Resolve matches the normalized query against the corpus in stages:
//
//   - with an artist: exact (song, artist) pair, then substring of song
//   - without an artist: exact song, then substring of song
//
// The first matching row in corpus order wins. An unresolved query produces
// a seeded random sample instead of an error.
//
// # Usage
//
//	engine, err := recommend.NewEngine(ctx, cfg, songs, searcher, logger)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	resp := engine.Recommend(ctx, recommend.Request{Song: "imagine", Artist: "john lennon"})
//
// # Thread Safety
//
// Recommend, Similar and Stats are safe for concurrent use. Close removes
// the similarity file and must only be called once no request is in flight.
package recommend
