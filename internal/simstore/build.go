// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package simstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/lyricsim/internal/vectorize"
)

// BuildOptions controls Build.
type BuildOptions struct {
	// BatchSize is the number of rows computed and written per block.
	// Default: 1000
	BatchSize int

	// FlushEvery syncs the file after this many batches.
	// Default: 2
	FlushEvery int

	// Workers splits each batch across this many goroutines. Batches are
	// computed one after another with a single worker.
	// Default: 1
	Workers int

	Logger zerolog.Logger
}

func (o *BuildOptions) applyDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	if o.FlushEvery <= 0 {
		o.FlushEvery = 2
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
}

// Build computes the cosine similarity of every row of m against every row
// and stores the full N×N result at path. The diagonal is exactly 1 and
// entry (i, j) is bitwise equal to entry (j, i). Rows with zero norm are
// dissimilar to everything except themselves.
//
// On any error the partial file is removed.
//
//nolint:gocritic // options are read once
func Build(ctx context.Context, m *vectorize.Matrix, path string, opts BuildOptions) (*Store, error) {
	opts.applyDefaults()
	logger := opts.Logger.With().Str("component", "simstore").Logger()
	n := m.Rows()
	started := time.Now()

	w, err := Create(path, n)
	if err != nil {
		return nil, err
	}

	cols := transpose(m)
	norms := make([]float64, n)
	for i := range norms {
		norms[i] = m.RowNorm(i)
	}

	block := make([]float32, min(opts.BatchSize, n)*n)
	batches := 0
	for start := 0; start < n; start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			_ = w.Abort()
			return nil, err
		}

		end := min(start+opts.BatchSize, n)
		out := block[:(end-start)*n]
		if err := computeBlock(ctx, m, cols, norms, start, end, out, opts.Workers); err != nil {
			_ = w.Abort()
			return nil, fmt.Errorf("compute similarity rows %d..%d: %w", start, end, err)
		}
		if err := w.WriteRows(start, out); err != nil {
			_ = w.Abort()
			return nil, err
		}

		batches++
		if batches%opts.FlushEvery == 0 {
			if err := w.Flush(); err != nil {
				_ = w.Abort()
				return nil, err
			}
			logger.Info().Int("rows", end).Int("total", n).Msg("Similarity progress")
		}
	}

	s, err := w.Finish()
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("rows", n).
		Int64("bytes", s.Size()).
		Dur("duration", time.Since(started)).
		Msg("Similarity matrix built")
	return s, nil
}

// columns is the CSC form of a matrix: for each column the rows holding a
// value, ascending, and the values.
type columns struct {
	ptr  []int
	rows []int32
	vals []float32
}

func transpose(m *vectorize.Matrix) *columns {
	ptr := make([]int, m.Cols()+1)
	for i := 0; i < m.Rows(); i++ {
		idx, _ := m.Row(i)
		for _, c := range idx {
			ptr[c+1]++
		}
	}
	for c := 0; c < m.Cols(); c++ {
		ptr[c+1] += ptr[c]
	}

	next := make([]int, m.Cols())
	copy(next, ptr[:m.Cols()])
	rows := make([]int32, m.NNZ())
	vals := make([]float32, m.NNZ())
	for i := 0; i < m.Rows(); i++ {
		idx, v := m.Row(i)
		for k, c := range idx {
			rows[next[c]] = int32(i)
			vals[next[c]] = v[k]
			next[c]++
		}
	}
	return &columns{ptr: ptr, rows: rows, vals: vals}
}

// computeBlock fills out with rows [start, end) of the similarity matrix.
// With more than one worker, each owns a dense accumulator and a disjoint
// set of rows.
func computeBlock(ctx context.Context, m *vectorize.Matrix, cols *columns, norms []float64,
	start, end int, out []float32, workers int) error {
	n := m.Rows()
	if workers <= 1 {
		acc := make([]float64, n)
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			similarityRow(m, cols, norms, i, acc, out[(i-start)*n:(i-start+1)*n])
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	workers = min(workers, end-start)

	for wk := 0; wk < workers; wk++ {
		g.Go(func() error {
			acc := make([]float64, n)
			for i := start + wk; i < end; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				similarityRow(m, cols, norms, i, acc, out[(i-start)*n:(i-start+1)*n])
			}
			return nil
		})
	}
	return g.Wait()
}

// similarityRow writes row i into dst using acc as scratch. Products are
// summed in ascending column order, which is the same order for (i, j) and
// (j, i), so the result is symmetric bit for bit.
func similarityRow(m *vectorize.Matrix, cols *columns, norms []float64, i int, acc []float64, dst []float32) {
	clear(acc)
	idx, vals := m.Row(i)
	for k, c := range idx {
		xi := float64(vals[k])
		for p := cols.ptr[c]; p < cols.ptr[c+1]; p++ {
			acc[cols.rows[p]] += xi * float64(cols.vals[p])
		}
	}

	ni := norms[i]
	for j := range dst {
		nj := norms[j]
		if ni == 0 || nj == 0 {
			dst[j] = 0
			continue
		}
		dst[j] = float32(acc[j] / (ni * nj))
	}
	dst[i] = 1
}
