// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package vectorize

import "math"

// Matrix is a compressed sparse row matrix of float32 weights. Column indices
// within a row are strictly increasing. A Matrix is immutable once built.
type Matrix struct {
	rows, cols int
	indptr     []int
	indices    []int32
	data       []float32
}

// NewMatrix builds a Matrix from raw CSR arrays. indptr must have rows+1
// entries. The slices are retained, not copied.
func NewMatrix(rows, cols int, indptr []int, indices []int32, data []float32) *Matrix {
	return &Matrix{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.data) }

// Row returns the column indices and values of row i. The returned slices
// alias the matrix storage and must not be modified.
func (m *Matrix) Row(i int) ([]int32, []float32) {
	lo, hi := m.indptr[i], m.indptr[i+1]
	return m.indices[lo:hi], m.data[lo:hi]
}

// RowNorm returns the Euclidean norm of row i.
func (m *Matrix) RowNorm(i int) float64 {
	_, vals := m.Row(i)
	var sum float64
	for _, v := range vals {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Dense expands row i into dst, which must have Cols() entries. Entries not
// present in the row are zeroed.
func (m *Matrix) Dense(i int, dst []float32) {
	clear(dst)
	idx, vals := m.Row(i)
	for k, c := range idx {
		dst[c] = vals[k]
	}
}
