// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

// Package vectorize turns preprocessed documents into L2-normalized TF-IDF
// vectors over a bounded vocabulary.
//
// Fitting is a single deterministic pass: identical input produces identical
// vocabulary and bit-identical weights.
//
//   - Tokens are runs of two or more word runes (letters, digits, underscore).
//   - English stopwords are removed.
//   - Terms outside the [MinDF, MaxDF] document-frequency window are pruned.
//   - The MaxFeatures terms with the highest corpus frequency are kept, ties
//     broken lexically. Column indices follow lexical term order.
//   - Weight is raw count times ln((1+n)/(1+df)) + 1, and each row is scaled
//     to unit length.
package vectorize

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrEmptyVocabulary is returned when no document contains a usable token.
	ErrEmptyVocabulary = errors.New("empty vocabulary: documents only contain stopwords or short tokens")

	// ErrNoTerms is returned when document-frequency pruning removes every term.
	ErrNoTerms = errors.New("no terms remain after pruning: lower min_df or raise max_df")

	// ErrDFRange is returned when max_df resolves to fewer documents than min_df.
	ErrDFRange = errors.New("max_df corresponds to fewer documents than min_df")
)

// Config bounds the vocabulary.
type Config struct {
	// MaxFeatures caps vocabulary size. 0 means unbounded.
	MaxFeatures int

	// MinDF is an absolute document count when >= 1, otherwise a fraction
	// of the corpus.
	MinDF float64

	// MaxDF is a fraction of the corpus when <= 1, otherwise an absolute
	// document count.
	MaxDF float64
}

// DefaultConfig returns the bounds used for lyrics.
func DefaultConfig() Config {
	return Config{MaxFeatures: 3000, MinDF: 3, MaxDF: 0.8}
}

func (c Config) minDocCount(n int) float64 {
	if c.MinDF >= 1 {
		return c.MinDF
	}
	return c.MinDF * float64(n)
}

func (c Config) maxDocCount(n int) float64 {
	if c.MaxDF <= 1 {
		return c.MaxDF * float64(n)
	}
	return c.MaxDF
}

// Vocabulary maps terms to matrix columns.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string { return v.terms[i] }

// Index returns the column of term, if present.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Model is the result of fitting a corpus.
type Model struct {
	Vocabulary *Vocabulary
	// IDF holds the inverse document frequency per column.
	IDF    []float64
	Matrix *Matrix
}

// Analyze splits doc into lowercase word tokens of at least two runes and
// drops English stopwords.
func Analyze(doc string) []string {
	words := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !(r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r))
	})
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 || IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

type termCount struct {
	term  int32
	count int32
}

// Fit learns the vocabulary and IDF weights from docs and returns the
// weighted document-term matrix, one row per document in input order.
func Fit(docs []string, cfg Config) (*Model, error) {
	n := len(docs)
	if n == 0 {
		return nil, ErrEmptyVocabulary
	}

	// Count per document against a provisional term id space.
	ids := make(map[string]int32)
	var terms []string
	var df, tf []int
	rows := make([][]termCount, n)

	for d, doc := range docs {
		counts := make(map[int32]int32)
		for _, tok := range Analyze(doc) {
			id, ok := ids[tok]
			if !ok {
				id = int32(len(terms))
				ids[tok] = id
				terms = append(terms, tok)
				df = append(df, 0)
				tf = append(tf, 0)
			}
			counts[id]++
		}
		row := make([]termCount, 0, len(counts))
		for id, c := range counts {
			row = append(row, termCount{term: id, count: c})
			df[id]++
			tf[id] += int(c)
		}
		rows[d] = row
	}

	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}

	minCount, maxCount := cfg.minDocCount(n), cfg.maxDocCount(n)
	if maxCount < minCount {
		return nil, fmt.Errorf("%w (max %.2f < min %.2f)", ErrDFRange, maxCount, minCount)
	}

	// Candidates in lexical order so the stable frequency sort breaks ties
	// lexically.
	candidates := make([]int32, 0, len(terms))
	for id := range terms {
		f := float64(df[id])
		if f >= minCount && f <= maxCount {
			candidates = append(candidates, int32(id))
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoTerms
	}
	slices.SortFunc(candidates, func(a, b int32) int { return strings.Compare(terms[a], terms[b]) })

	if cfg.MaxFeatures > 0 && len(candidates) > cfg.MaxFeatures {
		slices.SortStableFunc(candidates, func(a, b int32) int { return tf[b] - tf[a] })
		candidates = candidates[:cfg.MaxFeatures]
		slices.SortFunc(candidates, func(a, b int32) int { return strings.Compare(terms[a], terms[b]) })
	}

	vocab := &Vocabulary{
		terms: make([]string, len(candidates)),
		index: make(map[string]int, len(candidates)),
	}
	column := make([]int32, len(terms))
	for i := range column {
		column[i] = -1
	}
	idf := make([]float64, len(candidates))
	for col, id := range candidates {
		vocab.terms[col] = terms[id]
		vocab.index[terms[id]] = col
		column[id] = int32(col)
		idf[col] = math.Log(float64(1+n)/float64(1+df[id])) + 1
	}

	return &Model{
		Vocabulary: vocab,
		IDF:        idf,
		Matrix:     weigh(rows, column, idf),
	}, nil
}

// weigh builds the normalized CSR matrix from raw per-document counts.
func weigh(rows [][]termCount, column []int32, idf []float64) *Matrix {
	indptr := make([]int, 1, len(rows)+1)
	var indices []int32
	var data []float32

	type entry struct {
		col int32
		w   float64
	}
	var buf []entry

	for _, row := range rows {
		buf = buf[:0]
		for _, tc := range row {
			if col := column[tc.term]; col >= 0 {
				buf = append(buf, entry{col: col, w: float64(tc.count) * idf[col]})
			}
		}
		// Sum in column order so the norm does not depend on map iteration.
		slices.SortFunc(buf, func(a, b entry) int { return int(a.col - b.col) })

		var norm float64
		for _, e := range buf {
			norm += e.w * e.w
		}
		norm = math.Sqrt(norm)
		for _, e := range buf {
			indices = append(indices, e.col)
			if norm > 0 {
				data = append(data, float32(e.w/norm))
			} else {
				data = append(data, 0)
			}
		}
		indptr = append(indptr, len(indices))
	}

	return NewMatrix(len(rows), len(idf), indptr, indices, data)
}
