// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package recommend

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/dataset"
	"github.com/tomtom215/lyricsim/internal/metrics"
)

// enricher maps corpus rows to catalog descriptors.
type enricher struct {
	songs       []dataset.Song
	searcher    catalog.Searcher
	concurrency int
	timeout     time.Duration
}

// enrich looks up every row in the catalog and returns descriptors in the
// order of rows. A failed, timed out or empty lookup yields the synthetic
// descriptor for that row; enrich itself never fails.
func (en *enricher) enrich(ctx context.Context, rows []int, logger zerolog.Logger) []catalog.Track {
	out := make([]catalog.Track, len(rows))

	g := new(errgroup.Group)
	g.SetLimit(en.concurrency)
	for i, row := range rows {
		g.Go(func() error {
			out[i] = en.lookup(ctx, row, logger)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (en *enricher) lookup(ctx context.Context, row int, logger zerolog.Logger) (track catalog.Track) {
	s := en.songs[row]
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Int("row", row).Msg("Catalog lookup panicked, using local descriptor")
			metrics.RecordEnrichment("local")
			track = localTrack(row, s)
		}
	}()

	lookupCtx, cancel := context.WithTimeout(ctx, en.timeout)
	defer cancel()

	tracks, err := en.searcher.Search(lookupCtx, s.Song+" "+s.Artist, 1)
	if err != nil {
		logger.Debug().Err(err).Int("row", row).Msg("Catalog lookup failed, using local descriptor")
	}
	if err != nil || len(tracks) == 0 {
		metrics.RecordEnrichment("local")
		return localTrack(row, s)
	}

	metrics.RecordEnrichment("catalog")
	return tracks[0]
}

// localTrack is the descriptor for a row the catalog could not supply.
func localTrack(row int, s dataset.Song) catalog.Track {
	return catalog.Track{
		ID:     "local_" + strconv.Itoa(row),
		Title:  s.Song,
		Artist: s.Artist,
	}
}
