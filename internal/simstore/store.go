// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

// Package simstore keeps a dense square float32 similarity matrix on disk.
//
// The matrix is too large to hold in memory for realistic corpora (4·N²
// bytes), so it is written once, row block by row block, through a Writer and
// then served read-only from a memory mapping by a Store.
//
// # File Format
//
// A single flat file with no header: N×N little-endian float32 values in
// row-major order. Entry (i, j) lives at byte offset 4·(i·N + j).
//
// # Lifecycle
//
//	w, err := simstore.Create(path, n)
//	err = w.WriteRows(0, block)   // any number of row blocks
//	err = w.Flush()               // optional durability points
//	store, err := w.Finish()      // sync, close, reopen read-only
//	row, err := store.Row(i)
//	err = store.Close()           // unmaps and removes the file, once
//
// A Store is safe for concurrent readers. Close may race with readers; reads
// after Close return ErrClosed.
package simstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"golang.org/x/exp/mmap"
)

const bytesPerValue = 4

var (
	// ErrClosed is returned by reads on a closed Store.
	ErrClosed = errors.New("similarity store is closed")

	// ErrOutOfRange is returned for row or column indices outside [0, N).
	ErrOutOfRange = errors.New("similarity index out of range")

	// ErrShortRow is returned when a destination slice is smaller than N.
	ErrShortRow = errors.New("destination shorter than row")
)

// FileSize returns the size in bytes of an n×n matrix file.
func FileSize(n int) int64 {
	return int64(n) * int64(n) * bytesPerValue
}

// Writer fills a new matrix file. It is not safe for concurrent use.
type Writer struct {
	f    *os.File
	path string
	n    int
	buf  []byte
}

// Create creates (or truncates) the file at path and sizes it for an n×n
// matrix. Rows not written read back as zero.
func Create(path string, n int) (*Writer, error) {
	if n < 0 {
		return nil, fmt.Errorf("create similarity file: negative size %d", n)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create similarity file: %w", err)
	}
	if err := f.Truncate(FileSize(n)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("size similarity file: %w", err)
	}

	return &Writer{f: f, path: path, n: n}, nil
}

// N returns the matrix dimension.
func (w *Writer) N() int { return w.n }

// WriteRows writes a row-major block of whole rows starting at row start.
func (w *Writer) WriteRows(start int, block []float32) error {
	if w.f == nil {
		return ErrClosed
	}
	if w.n == 0 || len(block)%w.n != 0 {
		return fmt.Errorf("write rows: block of %d values is not a whole number of rows of %d", len(block), w.n)
	}
	rows := len(block) / w.n
	if start < 0 || start+rows > w.n {
		return fmt.Errorf("write rows %d..%d: %w", start, start+rows, ErrOutOfRange)
	}

	size := len(block) * bytesPerValue
	if cap(w.buf) < size {
		w.buf = make([]byte, size)
	}
	buf := w.buf[:size]
	for i, v := range block {
		binary.LittleEndian.PutUint32(buf[i*bytesPerValue:], math.Float32bits(v))
	}

	off := int64(start) * int64(w.n) * bytesPerValue
	if _, err := w.f.WriteAt(buf, off); err != nil {
		return fmt.Errorf("write rows at %d: %w", start, err)
	}
	return nil
}

// Flush commits written rows to stable storage.
func (w *Writer) Flush() error {
	if w.f == nil {
		return ErrClosed
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("flush similarity file: %w", err)
	}
	return nil
}

// Finish flushes and closes the write handle, then reopens the file as a
// read-only Store. The Writer is unusable afterwards. On failure the file is
// removed.
func (w *Writer) Finish() (*Store, error) {
	if w.f == nil {
		return nil, ErrClosed
	}
	if err := w.Flush(); err != nil {
		_ = w.Abort()
		return nil, err
	}
	if err := w.f.Close(); err != nil {
		w.f = nil
		_ = os.Remove(w.path)
		return nil, fmt.Errorf("close similarity file: %w", err)
	}
	w.f = nil
	w.buf = nil

	s, err := Open(w.path, w.n)
	if err != nil {
		_ = os.Remove(w.path)
		return nil, err
	}
	return s, nil
}

// Abort closes the write handle and removes the partial file.
func (w *Writer) Abort() error {
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	if err := os.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove partial similarity file: %w", err)
	}
	return nil
}

// Store is a read-only view of a finished matrix file.
type Store struct {
	path string
	n    int

	mu sync.RWMutex
	r  *mmap.ReaderAt

	closeOnce sync.Once
	closeErr  error
}

// Open maps an existing n×n matrix file read-only. The file is owned by the
// returned Store and is removed by Close.
func Open(path string, n int) (*Store, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("map similarity file: %w", err)
	}
	if int64(r.Len()) != FileSize(n) {
		_ = r.Close()
		return nil, fmt.Errorf("similarity file %s is %d bytes, want %d for n=%d", path, r.Len(), FileSize(n), n)
	}
	return &Store{path: path, n: n, r: r}, nil
}

// N returns the matrix dimension.
func (s *Store) N() int { return s.n }

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Size returns the backing file size in bytes.
func (s *Store) Size() int64 { return FileSize(s.n) }

// RowInto copies row i into dst, which must hold at least N values.
func (s *Store) RowInto(i int, dst []float32) error {
	if i < 0 || i >= s.n {
		return fmt.Errorf("row %d of %d: %w", i, s.n, ErrOutOfRange)
	}
	if len(dst) < s.n {
		return fmt.Errorf("row %d: %w", i, ErrShortRow)
	}

	buf := make([]byte, s.n*bytesPerValue)
	if err := s.readAt(buf, int64(i)*int64(s.n)*bytesPerValue); err != nil {
		return fmt.Errorf("read row %d: %w", i, err)
	}
	for j := 0; j < s.n; j++ {
		dst[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*bytesPerValue:]))
	}
	return nil
}

// Row returns a copy of row i.
func (s *Store) Row(i int) ([]float32, error) {
	dst := make([]float32, s.n)
	if err := s.RowInto(i, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// At returns entry (i, j).
func (s *Store) At(i, j int) (float32, error) {
	if i < 0 || i >= s.n || j < 0 || j >= s.n {
		return 0, fmt.Errorf("entry (%d, %d) of %d: %w", i, j, s.n, ErrOutOfRange)
	}
	var buf [bytesPerValue]byte
	if err := s.readAt(buf[:], (int64(i)*int64(s.n)+int64(j))*bytesPerValue); err != nil {
		return 0, fmt.Errorf("read entry (%d, %d): %w", i, j, err)
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

func (s *Store) readAt(p []byte, off int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.r == nil {
		return ErrClosed
	}
	if _, err := s.r.ReadAt(p, off); err != nil {
		return err
	}
	return nil
}

// Close unmaps the file and removes it from disk. Only the first call does
// any work; later calls return the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		r := s.r
		s.r = nil
		s.mu.Unlock()

		var errs []error
		if r != nil {
			if err := r.Close(); err != nil {
				errs = append(errs, fmt.Errorf("unmap similarity file: %w", err))
			}
		}
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove similarity file: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
