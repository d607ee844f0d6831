// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package recommend

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestRank(t *testing.T) {
	t.Parallel()

	row := []float32{0.2, 1, 0.5, 0.5, 0.9, 0}

	tests := []struct {
		name string
		self int
		n    int
		want []Candidate
	}{
		{"top three", 1, 3, []Candidate{{4, 0.9}, {2, 0.5}, {3, 0.5}}},
		{"ties by index", 1, 2, []Candidate{{4, 0.9}, {2, 0.5}}},
		{"n larger than row", 1, 10, []Candidate{{4, 0.9}, {2, 0.5}, {3, 0.5}, {0, 0.2}, {5, 0}}},
		{"self not top", 4, 2, []Candidate{{1, 1}, {2, 0.5}}},
		{"zero n", 1, 0, []Candidate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Rank(row, tt.self, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rank(self=%d, n=%d) = %v, want %v", tt.self, tt.n, got, tt.want)
			}
		})
	}
}

func TestRank_NeverIncludesSelf(t *testing.T) {
	t.Parallel()

	// self shares the top score with another row
	row := []float32{1, 1, 1, 1}
	for self := range row {
		got := Rank(row, self, len(row))
		if len(got) != len(row)-1 {
			t.Errorf("self=%d: len = %d, want %d", self, len(got), len(row)-1)
		}
		for _, c := range got {
			if c.Index == self {
				t.Errorf("self=%d: ranked list contains self", self)
			}
		}
	}
}

func TestSample(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   int
		n       int
		wantLen int
	}{
		{"subset", 100, 5, 5},
		{"all rows", 4, 10, 4},
		{"exact", 7, 7, 7},
		{"zero n", 10, 0, 0},
		{"empty corpus", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Sample(rand.New(rand.NewSource(42)), tt.total, tt.n) //nolint:gosec // test
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			seen := make(map[int]bool, len(got))
			for _, v := range got {
				if v < 0 || v >= tt.total {
					t.Errorf("index %d out of range [0, %d)", v, tt.total)
				}
				if seen[v] {
					t.Errorf("duplicate index %d", v)
				}
				seen[v] = true
			}
		})
	}
}

func TestSample_Seeded(t *testing.T) {
	t.Parallel()

	a := Sample(rand.New(rand.NewSource(7)), 1000, 20) //nolint:gosec // test
	b := Sample(rand.New(rand.NewSource(7)), 1000, 20) //nolint:gosec // test
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestSample_CoversAllRows(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1)) //nolint:gosec // test
	hits := make([]int, 10)
	for i := 0; i < 2000; i++ {
		for _, v := range Sample(rng, 10, 3) {
			hits[v]++
		}
	}
	for row, h := range hits {
		if h == 0 {
			t.Errorf("row %d never sampled", row)
		}
	}
}
