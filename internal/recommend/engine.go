// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lyricsim/internal/catalog"
	"github.com/tomtom215/lyricsim/internal/dataset"
	"github.com/tomtom215/lyricsim/internal/logging"
	"github.com/tomtom215/lyricsim/internal/metrics"
	"github.com/tomtom215/lyricsim/internal/simstore"
	"github.com/tomtom215/lyricsim/internal/textproc"
	"github.com/tomtom215/lyricsim/internal/vectorize"
)

// Engine owns the corpus, its TF-IDF model and the similarity store.
// It is immutable after NewEngine and safe for concurrent use.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	songs    []dataset.Song
	resolver *Resolver
	model    *vectorize.Model
	store    *simstore.Store

	catalog  catalog.Searcher
	enricher *enricher

	// Random source for the unresolved fallback (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex

	stats Stats

	closeOnce sync.Once
	closeErr  error
}

// NewEngine builds the similarity index for songs. It blocks until the
// similarity file is written, which for large corpora takes minutes.
// searcher may be nil, in which case no catalog metadata is used.
//
//nolint:gocritic // config and logger passed by value
func NewEngine(ctx context.Context, cfg Config, songs []dataset.Song, searcher catalog.Searcher, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(songs) == 0 {
		return nil, dataset.ErrEmpty
	}
	if searcher == nil {
		searcher = catalog.Noop{}
	}

	logger = logger.With().Str("component", "recommend").Logger()
	buildStart := time.Now()

	texts := make([]string, len(songs))
	for i := range songs {
		texts[i] = songs[i].Text
	}

	stageStart := time.Now()
	processed, err := textproc.NewPreprocessor(cfg.Preprocess, logger).ProcessAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("preprocess lyrics: %w", err)
	}
	metrics.RecordBuildStage("preprocess", time.Since(stageStart))
	logger.Info().Int("songs", len(songs)).Dur("duration", time.Since(stageStart)).Msg("Lyrics preprocessed")

	stageStart = time.Now()
	model, err := vectorize.Fit(processed, cfg.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("fit tf-idf: %w", err)
	}
	metrics.RecordBuildStage("vectorize", time.Since(stageStart))
	logger.Info().
		Int("vocabulary", model.Vocabulary.Len()).
		Int("non_zeros", model.Matrix.NNZ()).
		Dur("duration", time.Since(stageStart)).
		Msg("TF-IDF matrix built")

	stageStart = time.Now()
	store, err := simstore.Build(ctx, model.Matrix, cfg.Similarity.Path, simstore.BuildOptions{
		BatchSize:  cfg.Similarity.BatchSize,
		FlushEvery: cfg.Similarity.FlushEvery,
		Workers:    cfg.Similarity.Workers,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}
	metrics.RecordBuildStage("similarity", time.Since(stageStart))

	metrics.EngineSongs.Set(float64(len(songs)))
	metrics.EngineVocabularySize.Set(float64(model.Vocabulary.Len()))
	metrics.SimilarityMatrixBytes.Set(float64(store.Size()))

	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		songs:    songs,
		resolver: NewResolver(songs),
		model:    model,
		store:    store,
		catalog:  searcher,
		enricher: &enricher{
			songs:       songs,
			searcher:    searcher,
			concurrency: cfg.EnrichConcurrency,
			timeout:     cfg.LookupTimeout,
		},
		rng: rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // math/rand is fine for fallback sampling
		stats: Stats{
			Songs:          len(songs),
			VocabularySize: model.Vocabulary.Len(),
			NonZeros:       model.Matrix.NNZ(),
			MatrixPath:     store.Path(),
			MatrixBytes:    store.Size(),
			BuildDuration:  time.Since(buildStart),
			BuiltAt:        time.Now(),
		},
	}

	logger.Info().
		Int("songs", e.stats.Songs).
		Int64("matrix_bytes", e.stats.MatrixBytes).
		Dur("duration", e.stats.BuildDuration).
		Msg("Recommendation engine ready")

	return e, nil
}

// Recommend answers one query. It never fails: an unresolved song yields a
// random sample, catalog failures fall back to local descriptors and an
// unexpected ranking failure yields a single error descriptor.
//
//nolint:gocritic // request passed by value
func (e *Engine) Recommend(ctx context.Context, req Request) *Response {
	start := time.Now()
	n := e.cfg.topN(req.TopN)
	logger := e.requestLogger(ctx)

	logger.Info().Str("song", req.Song).Str("artist", req.Artist).Int("top_n", n).Msg("Finding recommendations")

	local, outcome := e.localRecommendations(ctx, req.Song, req.Artist, n, logger)

	query := strings.TrimSpace(req.Song + " " + req.Artist)
	direct := e.directSearch(ctx, query, n, logger)

	metrics.RecordRecommendation(outcome, time.Since(start))
	logger.Debug().
		Str("resolution", outcome).
		Int("local", len(local)).
		Int("catalog", len(direct)).
		Dur("duration", time.Since(start)).
		Msg("Recommendation complete")

	return &Response{
		LocalRecommendations:   local,
		SpotifyRecommendations: direct,
	}
}

// localRecommendations resolves, ranks and enriches. The second return
// value is the resolution outcome label.
func (e *Engine) localRecommendations(ctx context.Context, song, artist string, n int, logger zerolog.Logger) (tracks []catalog.Track, outcome string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Error in local recommendations")
			tracks = []catalog.Track{errorTrack}
			outcome = "error"
		}
	}()

	res := e.resolver.Resolve(song, artist)
	if !res.Found {
		logger.Info().Msg("No matching song found; returning random recommendations")
		return e.enricher.enrich(ctx, e.sample(n), logger), res.Stage.String()
	}

	candidates, err := e.Similar(res.Index, n)
	if err != nil {
		logger.Error().Err(err).Int("row", res.Index).Msg("Error in local recommendations")
		return []catalog.Track{errorTrack}, "error"
	}

	rows := make([]int, len(candidates))
	for i, c := range candidates {
		rows[i] = c.Index
	}
	logger.Debug().Str("stage", res.Stage.String()).Int("row", res.Index).Msg("Query resolved")

	return e.enricher.enrich(ctx, rows, logger), res.Stage.String()
}

func (e *Engine) directSearch(ctx context.Context, query string, n int, logger zerolog.Logger) []catalog.Track {
	searchCtx, cancel := context.WithTimeout(ctx, e.cfg.LookupTimeout)
	defer cancel()

	tracks, err := e.catalog.Search(searchCtx, query, n)
	if err != nil {
		logger.Warn().Err(err).Str("query", query).Msg("Error searching catalog tracks")
		return []catalog.Track{}
	}
	if tracks == nil {
		return []catalog.Track{}
	}
	return tracks
}

func (e *Engine) sample(n int) []int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return Sample(e.rng, len(e.songs), n)
}

// Similar returns the n rows most similar to row, excluding row itself.
func (e *Engine) Similar(row, n int) ([]Candidate, error) {
	if row < 0 || row >= len(e.songs) {
		return nil, fmt.Errorf("row %d: %w", row, simstore.ErrOutOfRange)
	}
	scores, err := e.store.Row(row)
	if err != nil {
		return nil, fmt.Errorf("read similarity row %d: %w", row, err)
	}
	return Rank(scores, row, n), nil
}

// Song returns the corpus row at i.
func (e *Engine) Song(i int) (dataset.Song, bool) {
	if i < 0 || i >= len(e.songs) {
		return dataset.Song{}, false
	}
	return e.songs[i], true
}

// Stats returns build statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Close releases the similarity store and removes its file. Repeated calls
// return the first result.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		err := e.store.Close()
		if err != nil && !errors.Is(err, simstore.ErrClosed) {
			e.closeErr = fmt.Errorf("close similarity store: %w", err)
		}
		metrics.SimilarityMatrixBytes.Set(0)
		e.logger.Info().Str("path", e.stats.MatrixPath).Msg("Removed similarity matrix file")
	})
	return e.closeErr
}

// requestLogger uses the request-scoped logger when ctx comes from an HTTP
// request, and the engine logger otherwise.
func (e *Engine) requestLogger(ctx context.Context) zerolog.Logger {
	if logging.RequestIDFromContext(ctx) == "" {
		return e.logger
	}
	return logging.Ctx(ctx).With().Str("component", "recommend").Logger()
}
