// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

// Package textproc normalizes raw lyrics into stemmed token strings.
//
// Normalization lowercases the text, turns punctuation and digits into
// separators, drops English stopwords and tokens shorter than three runes,
// and reduces each remaining token with the Snowball English stemmer. The
// result is the surviving stems joined by single spaces, in source order.
package textproc

import (
	"context"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"github.com/rs/zerolog"
)

// MinTokenRunes is the shortest token kept by Process.
const MinTokenRunes = 3

// Process normalizes a single text. It has no side effects and is safe for
// concurrent use.
func Process(text string) string {
	tokens := Tokens(text)
	return strings.Join(tokens, " ")
}

// Tokens returns the stems Process would join.
func Tokens(text string) []string {
	fields := strings.Fields(strings.Map(separate, strings.ToLower(text)))
	out := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) < MinTokenRunes || IsStopWord(w) {
			continue
		}
		out = append(out, english.Stem(w, false))
	}
	return out
}

// contractionStubs are the negated contraction stems in the NLTK English
// list but not in the Snowball one. separate turns "didn't" into "didn t",
// so the stem is what reaches the filter.
var contractionStubs = map[string]struct{}{
	"ain": {}, "aren": {}, "couldn": {}, "didn": {}, "doesn": {},
	"hadn": {}, "hasn": {}, "haven": {}, "isn": {}, "mightn": {},
	"mustn": {}, "needn": {}, "shan": {}, "shouldn": {}, "wasn": {},
	"weren": {}, "won": {}, "wouldn": {},
	"ll": {}, "re": {}, "ve": {}, "ma": {}, "d": {}, "m": {}, "o": {}, "y": {},
}

// IsStopWord reports whether w is dropped by Process.
func IsStopWord(w string) bool {
	if english.IsStopWord(w) {
		return true
	}
	_, ok := contractionStubs[w]
	return ok
}

// separate keeps word runes and maps everything else, digits included, to a
// space.
func separate(r rune) rune {
	switch {
	case r == '_':
		return r
	case unicode.IsDigit(r):
		return ' '
	case unicode.IsLetter(r), unicode.IsNumber(r):
		return r
	default:
		return ' '
	}
}

// Options controls corpus-level processing.
type Options struct {
	// BatchSize is the number of texts handled between cancellation checks.
	// Default: 500
	BatchSize int

	// ProgressEvery logs progress and returns memory to the runtime each
	// time this many texts have been processed.
	// Default: 2000
	ProgressEvery int
}

// Preprocessor runs Process over a corpus in fixed-size batches.
type Preprocessor struct {
	opts   Options
	logger zerolog.Logger
}

// NewPreprocessor creates a Preprocessor, filling zero options with defaults.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPreprocessor(opts Options, logger zerolog.Logger) *Preprocessor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 2000
	}
	return &Preprocessor{
		opts:   opts,
		logger: logger.With().Str("component", "preprocess").Logger(),
	}
}

// Process normalizes one text, the same as the package-level Process.
func (p *Preprocessor) Process(text string) string {
	return Process(text)
}

// ProcessAll returns Process(texts[i]) for every i. Output does not depend on
// the batch size. Cancellation is checked between batches.
func (p *Preprocessor) ProcessAll(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	next := p.opts.ProgressEvery

	for start := 0; start < len(texts); start += p.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+p.opts.BatchSize, len(texts))
		for i := start; i < end; i++ {
			out[i] = Process(texts[i])
		}

		if end >= next && end < len(texts) {
			p.logger.Info().Int("processed", end).Int("total", len(texts)).Msg("Preprocessing progress")
			runtime.GC()
			for next <= end {
				next += p.opts.ProgressEvery
			}
		}
	}

	return out, nil
}
