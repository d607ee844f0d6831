// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package simstore

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
)

func writeStore(t *testing.T, n int, values []float32) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sim.dat")
	w, err := Create(path, n)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := w.WriteRows(0, values); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}
	s, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	values := []float32{
		1, 0.25, -0.5,
		0.25, 1, 0.75,
		-0.5, 0.75, 1,
	}
	s := writeStore(t, 3, values)

	if s.N() != 3 {
		t.Errorf("N() = %d, want 3", s.N())
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != 36 || s.Size() != 36 {
		t.Errorf("file size = %d (Size() = %d), want 36", info.Size(), s.Size())
	}

	for i := 0; i < 3; i++ {
		row, err := s.Row(i)
		if err != nil {
			t.Fatalf("Row(%d) error = %v", i, err)
		}
		if !slices.Equal(row, values[i*3:(i+1)*3]) {
			t.Errorf("Row(%d) = %v, want %v", i, row, values[i*3:(i+1)*3])
		}
	}

	v, err := s.At(1, 2)
	if err != nil || v != 0.75 {
		t.Errorf("At(1, 2) = %v, %v; want 0.75", v, err)
	}
}

func TestStore_BlocksAtOffsets(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sim.dat")
	w, err := Create(path, 4)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// second block first, then first block
	if err := w.WriteRows(2, []float32{9, 9, 9, 9, 8, 8, 8, 8}); err != nil {
		t.Fatalf("WriteRows(2) error = %v", err)
	}
	if err := w.WriteRows(0, []float32{1, 1, 1, 1}); err != nil {
		t.Fatalf("WriteRows(0) error = %v", err)
	}
	s, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	defer s.Close()

	want := [][]float32{{1, 1, 1, 1}, {0, 0, 0, 0}, {9, 9, 9, 9}, {8, 8, 8, 8}}
	for i, w := range want {
		row, err := s.Row(i)
		if err != nil {
			t.Fatalf("Row(%d) error = %v", i, err)
		}
		if !slices.Equal(row, w) {
			t.Errorf("Row(%d) = %v, want %v", i, row, w)
		}
	}
}

func TestWriter_Errors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sim.dat")
	w, err := Create(path, 3)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer w.Abort()

	if err := w.WriteRows(0, []float32{1, 2}); err == nil {
		t.Error("WriteRows() with partial row expected error")
	}
	if err := w.WriteRows(2, make([]float32, 6)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("WriteRows() past end error = %v, want ErrOutOfRange", err)
	}
	if err := w.WriteRows(-1, make([]float32, 3)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("WriteRows(-1) error = %v, want ErrOutOfRange", err)
	}
}

func TestWriter_AbortRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sim.dat")
	w, err := Create(path, 2)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Abort(): %v", err)
	}
	if err := w.WriteRows(0, []float32{1, 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteRows() after Abort() error = %v, want ErrClosed", err)
	}
}

func TestStore_OutOfRange(t *testing.T) {
	t.Parallel()

	s := writeStore(t, 2, []float32{1, 0, 0, 1})

	if _, err := s.Row(2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Row(2) error = %v, want ErrOutOfRange", err)
	}
	if _, err := s.Row(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Row(-1) error = %v, want ErrOutOfRange", err)
	}
	if _, err := s.At(0, 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("At(0, 5) error = %v, want ErrOutOfRange", err)
	}
	if err := s.RowInto(0, make([]float32, 1)); !errors.Is(err, ErrShortRow) {
		t.Errorf("RowInto() short dst error = %v, want ErrShortRow", err)
	}
}

func TestStore_CloseRemovesFileOnce(t *testing.T) {
	t.Parallel()

	s := writeStore(t, 2, []float32{1, 0, 0, 1})
	path := s.Path()

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Close(): %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := s.Row(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Row() after Close() error = %v, want ErrClosed", err)
	}
}

func TestOpen_SizeMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.dat")
	if err := os.WriteFile(path, make([]byte, 10), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Open(path, 2); err == nil {
		t.Error("Open() expected size mismatch error")
	}
}

func TestStore_ConcurrentReads(t *testing.T) {
	t.Parallel()

	const n = 16
	values := make([]float32, n*n)
	for i := range values {
		values[i] = float32(i)
	}
	s := writeStore(t, n, values)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for g := 0; g < n; g++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			for k := 0; k < 50; k++ {
				got, err := s.Row(row)
				if err != nil {
					errs <- err
					return
				}
				if got[0] != float32(row*n) {
					errs <- errors.New("unexpected row content")
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
