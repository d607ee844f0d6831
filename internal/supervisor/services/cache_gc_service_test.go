// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*CacheGCService)(nil)

type fakeGC struct {
	calls atomic.Int32
	err   error
}

func (f *fakeGC) RunGC() (int, error) {
	f.calls.Add(1)
	return 1, f.err
}

// syncBuffer guards a bytes.Buffer written by the service goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runGCService(t *testing.T, gc *fakeGC, logger zerolog.Logger, wantCalls int32) {
	t.Helper()

	svc := NewCacheGCService(gc, 5*time.Millisecond, logger)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for gc.calls.Load() < wantCalls && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if gc.calls.Load() < wantCalls {
		t.Errorf("RunGC called %d times, want >= %d", gc.calls.Load(), wantCalls)
	}
}

func TestCacheGCService_RunsPeriodically(t *testing.T) {
	runGCService(t, &fakeGC{}, zerolog.Nop(), 3)
}

func TestCacheGCService_KeepsRunningAfterFailure(t *testing.T) {
	var buf syncBuffer
	gc := &fakeGC{err: errors.New("value log locked")}

	runGCService(t, gc, zerolog.New(&buf), 2)

	if !strings.Contains(buf.String(), "Cache GC failed") {
		t.Errorf("log output %q missing failure message", buf.String())
	}
}

func TestNewCacheGCService_DefaultInterval(t *testing.T) {
	svc := NewCacheGCService(&fakeGC{}, 0, zerolog.Nop())
	if svc.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m", svc.interval)
	}
	if svc.String() != "cache-gc" {
		t.Errorf("String() = %q", svc.String())
	}
}
