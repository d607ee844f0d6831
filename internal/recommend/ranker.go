// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package recommend

import (
	"math/rand"
	"sort"
)

// Rank orders the columns of a similarity row by descending score, breaking
// ties by ascending index, drops the query row itself and returns the first n.
func Rank(row []float32, self, n int) []Candidate {
	if n <= 0 {
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(row))
	for j, score := range row {
		if j == self {
			continue
		}
		candidates = append(candidates, Candidate{Index: j, Score: score})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Score != candidates[b].Score {
			return candidates[a].Score > candidates[b].Score
		}
		return candidates[a].Index < candidates[b].Index
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// Sample returns n distinct row indexes in [0, total) chosen uniformly at
// random, or every row in random order when n >= total.
func Sample(rng *rand.Rand, total, n int) []int {
	if total <= 0 || n <= 0 {
		return []int{}
	}
	if n >= total {
		return rng.Perm(total)
	}

	// Partial Fisher-Yates over a sparse view of [0, total).
	swapped := make(map[int]int, n)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}

	out := make([]int, n)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(total-i)
		out[i] = at(j)
		swapped[j] = at(i)
	}
	return out
}
