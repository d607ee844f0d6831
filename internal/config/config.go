// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

/*
Package config loads Lyricsim configuration.

Configuration is layered with koanf: built-in defaults, then an optional YAML
file, then environment variables. Later layers win.

# Environment Variables

Server:
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_PORT: listen port (default: 5555)
  - HTTP_TIMEOUT: read/write timeout (default: 60s)

Dataset:
  - DATA_PATH: lyrics CSV with song, artist and text columns
  - DATA_SUBSET_SIZE: sample this many rows, 0 keeps all (default: 20000)
  - DATA_SAMPLE_SEED: sampling seed (default: 42)

Engine:
  - ENGINE_MAX_FEATURES, ENGINE_MIN_DF, ENGINE_MAX_DF
  - ENGINE_MATRIX_PATH: similarity file location (default: cosine_sim_temp.dat)
  - ENGINE_SIMILARITY_WORKERS: goroutines per similarity batch (default: 1)
  - ENGINE_TOP_N: default recommendation count (default: 5)

Catalog (Spotify):
  - SPOTIFY_ENABLED (default: true)
  - SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET: required when enabled
  - CATALOG_CACHE_PATH: badger directory, empty keeps the cache in memory only

Security:
  - CORS_ORIGINS: comma separated (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Dataset  DatasetConfig  `koanf:"dataset"`
	Engine   EngineConfig   `koanf:"engine"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatasetConfig describes where the lyrics corpus comes from.
type DatasetConfig struct {
	// Path is the CSV file. It must carry song, artist and text columns.
	Path string `koanf:"path"`

	// SubsetSize limits the corpus to a seeded random sample.
	// The similarity file grows with the square of this value.
	// Default: 20000. 0 keeps every row.
	SubsetSize int `koanf:"subset_size"`

	// SampleSeed makes the subset reproducible.
	// Default: 42
	SampleSeed int64 `koanf:"sample_seed"`
}

// EngineConfig tunes preprocessing, vectorization and similarity build.
type EngineConfig struct {
	PreprocessBatchSize int `koanf:"preprocess_batch_size"`
	ProgressEvery       int `koanf:"progress_every"`

	// MaxFeatures caps the vocabulary by corpus term frequency.
	MaxFeatures int `koanf:"max_features"`

	// MinDF is an absolute document count when >= 1, otherwise a fraction.
	MinDF float64 `koanf:"min_df"`

	// MaxDF is a fraction of documents when <= 1, otherwise an absolute count.
	MaxDF float64 `koanf:"max_df"`

	SimilarityBatchSize int    `koanf:"similarity_batch_size"`
	FlushEvery          int    `koanf:"flush_every"`
	MatrixPath          string `koanf:"matrix_path"`
	SimilarityWorkers   int    `koanf:"similarity_workers"`

	// TopN is the number of recommendations when a request does not ask
	// for a specific count. MaxTopN bounds what a request may ask for.
	TopN    int `koanf:"top_n"`
	MaxTopN int `koanf:"max_top_n"`

	// Seed drives the random fallback when a query cannot be resolved.
	Seed int64 `koanf:"seed"`

	EnrichConcurrency int           `koanf:"enrich_concurrency"`
	LookupTimeout     time.Duration `koanf:"lookup_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
}

// CatalogConfig configures the Spotify Web API client.
type CatalogConfig struct {
	Enabled      bool          `koanf:"enabled"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	TokenURL     string        `koanf:"token_url"`
	BaseURL      string        `koanf:"base_url"`
	Market       string        `koanf:"market"`
	Timeout      time.Duration `koanf:"timeout"`

	// RateLimit is the sustained outbound request rate per second.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	CacheSize       int           `koanf:"cache_size"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CachePath       string        `koanf:"cache_path"`
	CacheGCInterval time.Duration `koanf:"cache_gc_interval"`
}

// SecurityConfig holds CORS and inbound rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config for the file and env layers.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5555,
			Host:            "0.0.0.0",
			Timeout:         60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Dataset: DatasetConfig{
			Path:       "spotify_millsongdata.csv",
			SubsetSize: 20000,
			SampleSeed: 42,
		},
		Engine: EngineConfig{
			PreprocessBatchSize: 500,
			ProgressEvery:       2000,
			MaxFeatures:         3000,
			MinDF:               3,
			MaxDF:               0.8,
			SimilarityBatchSize: 1000,
			FlushEvery:          2,
			MatrixPath:          "cosine_sim_temp.dat",
			SimilarityWorkers:   1,
			TopN:                5,
			MaxTopN:             50,
			Seed:                42,
			EnrichConcurrency:   4,
			LookupTimeout:       5 * time.Second,
			RequestTimeout:      30 * time.Second,
		},
		Catalog: CatalogConfig{
			Enabled:         true,
			TokenURL:        "https://accounts.spotify.com/api/token",
			BaseURL:         "https://api.spotify.com/v1",
			Timeout:         10 * time.Second,
			RateLimit:       10,
			RateBurst:       5,
			CacheSize:       10000,
			CacheTTL:        24 * time.Hour,
			CacheGCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
