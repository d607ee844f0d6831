// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lyricsim/internal/cache"
	"github.com/tomtom215/lyricsim/internal/metrics"
)

// searchKeyPrefix namespaces search results in the badger store.
const searchKeyPrefix = "catalog:search:"

// CacheConfig configures CachedSearcher.
type CacheConfig struct {
	// Size is the number of results kept in memory.
	Size int

	// TTL applies to both tiers.
	TTL time.Duration

	// DB is the optional persistent tier. CachedSearcher takes ownership
	// and closes it in Close.
	DB *badger.DB
}

// CacheStats reports the memory tier counters.
type CacheStats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Size       int   `json:"size"`
	Persistent bool  `json:"persistent"`
}

// CachedSearcher answers repeated searches from a memory LRU, then from a
// badger store, before calling the wrapped Searcher. Only successful results
// are cached, empty ones included.
type CachedSearcher struct {
	next   Searcher
	memory *cache.LRUCache[[]Track]
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger

	closeOnce sync.Once
}

var _ Searcher = (*CachedSearcher)(nil)

// NewCachedSearcher wraps next.
func NewCachedSearcher(next Searcher, cfg CacheConfig, logger zerolog.Logger) *CachedSearcher {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &CachedSearcher{
		next:   next,
		memory: cache.NewLRUCache[[]Track](cfg.Size, cfg.TTL),
		db:     cfg.DB,
		ttl:    cfg.TTL,
		logger: logger.With().Str("component", "catalog_cache").Logger(),
	}
}

// OpenStore opens the badger directory used as the persistent tier.
func OpenStore(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog cache %s: %w", path, err)
	}
	return db, nil
}

// Search implements Searcher.
func (c *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	key := cacheKey(query, limit)

	if tracks, ok := c.memory.Get(key); ok {
		metrics.CatalogCacheHits.WithLabelValues("memory").Inc()
		return cloneTracks(tracks), nil
	}

	if c.db != nil {
		tracks, err := c.load(key)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
		} else if tracks != nil {
			metrics.CatalogCacheHits.WithLabelValues("disk").Inc()
			c.memory.Add(key, tracks)
			return cloneTracks(tracks), nil
		}
	}

	metrics.CatalogCacheMisses.Inc()
	tracks, err := c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []Track{}
	}

	c.memory.Add(key, cloneTracks(tracks))
	if c.db != nil {
		if err := c.store(key, tracks); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
		}
	}
	return tracks, nil
}

// load returns nil, nil when key is absent.
func (c *CachedSearcher) load(key string) ([]Track, error) {
	var tracks []Track
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get search result: %w", err)
		}
		return item.Value(func(val []byte) error {
			tracks = []Track{}
			return json.Unmarshal(val, &tracks)
		})
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *CachedSearcher) store(key string, tracks []Track) error {
	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("marshal search result: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(c.ttl))
	})
}

// RunGC drops expired memory entries and reclaims badger value log space.
// It returns the number of memory entries removed.
func (c *CachedSearcher) RunGC() (int, error) {
	removed := c.memory.CleanupExpired()
	if c.db == nil || c.db.IsClosed() {
		return removed, nil
	}

	for {
		err := c.db.RunValueLogGC(0.5)
		if err == nil {
			continue
		}
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return removed, nil
		}
		return removed, fmt.Errorf("catalog cache value log gc: %w", err)
	}
}

// Stats returns the memory tier counters.
func (c *CachedSearcher) Stats() CacheStats {
	hits, misses, size := c.memory.Stats()
	return CacheStats{
		Hits:       hits,
		Misses:     misses,
		Size:       size,
		Persistent: c.db != nil,
	}
}

// Close closes the persistent tier. It is safe to call more than once.
func (c *CachedSearcher) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.db != nil {
			err = c.db.Close()
		}
	})
	return err
}

func cacheKey(query string, limit int) string {
	return searchKeyPrefix + strconv.Itoa(limit) + ":" + strings.ToLower(strings.TrimSpace(query))
}

// cloneTracks copies the slice so callers cannot mutate cached entries.
func cloneTracks(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}
