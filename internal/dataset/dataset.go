// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

// Package dataset loads the lyrics corpus from CSV using an in-memory DuckDB.
//
// Rows keep their file order. When a subset is requested, DuckDB reservoir
// sampling with a fixed seed picks the rows, which are then returned in file
// order, so the same file, size and seed always produce the same slice.
package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// RequiredColumns are the CSV header names Load reads.
var RequiredColumns = []string{"song", "artist", "text"}

// ErrMissingColumn is returned when the CSV lacks a required column.
var ErrMissingColumn = errors.New("dataset is missing a required column")

// ErrEmpty is returned when the CSV (or the requested subset) has no rows.
var ErrEmpty = errors.New("dataset has no rows")

// Song is one corpus row. Song and Artist are trimmed and lowercased.
type Song struct {
	Song   string
	Artist string
	Text   string
}

// Options selects the file and an optional reproducible subset.
type Options struct {
	Path string

	// SubsetSize keeps a seeded random sample of this many rows. Zero or a
	// value at least the row count keeps everything.
	SubsetSize int
	Seed       int64
}

// Load reads the CSV described by opts.
func Load(ctx context.Context, opts Options) ([]Song, error) {
	// A single thread keeps reservoir sampling and row numbering repeatable.
	db, err := sql.Open("duckdb", ":memory:?threads=1&autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	source := fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", quoteLiteral(opts.Path))

	if err := checkColumns(ctx, db, source); err != nil {
		return nil, err
	}

	query := buildQuery(source, opts.SubsetSize, opts.Seed)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", opts.Path, err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var s Song
		if err := rows.Scan(&s.Song, &s.Artist, &s.Text); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row %d: %w", len(songs), err)
		}
		s.Song = Normalize(s.Song)
		s.Artist = Normalize(s.Artist)
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dataset: %w", err)
	}
	if len(songs) == 0 {
		return nil, ErrEmpty
	}

	return songs, nil
}

// Normalize trims surrounding whitespace and lowercases s. Titles and
// artists in the corpus and in queries go through the same function.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkColumns(ctx context.Context, db *sql.DB, source string) error {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+source+" LIMIT 0")
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read dataset header: %w", err)
	}
	for _, want := range RequiredColumns {
		if !slices.Contains(cols, want) {
			return fmt.Errorf("%w: %q (have %s)", ErrMissingColumn, want, strings.Join(cols, ", "))
		}
	}
	return nil
}

func buildQuery(source string, subset int, seed int64) string {
	var b strings.Builder
	b.WriteString("WITH src AS (SELECT row_number() OVER () AS pos, song, artist, text FROM ")
	b.WriteString(source)
	b.WriteString(") SELECT coalesce(song, ''), coalesce(artist, ''), coalesce(text, '') FROM src")
	if subset > 0 {
		fmt.Fprintf(&b, " USING SAMPLE reservoir(%d ROWS) REPEATABLE (%d)", subset, seed)
	}
	b.WriteString(" ORDER BY pos")
	return b.String()
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
