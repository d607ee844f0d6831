// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateDataset() error {
	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	if c.Dataset.SubsetSize < 0 {
		return fmt.Errorf("DATA_SUBSET_SIZE must be >= 0, got %d", c.Dataset.SubsetSize)
	}
	return nil
}

func (c *Config) validateEngine() error {
	e := &c.Engine
	switch {
	case e.PreprocessBatchSize < 1:
		return fmt.Errorf("ENGINE_PREPROCESS_BATCH_SIZE must be >= 1, got %d", e.PreprocessBatchSize)
	case e.SimilarityBatchSize < 1:
		return fmt.Errorf("ENGINE_SIMILARITY_BATCH_SIZE must be >= 1, got %d", e.SimilarityBatchSize)
	case e.SimilarityWorkers < 1:
		return fmt.Errorf("ENGINE_SIMILARITY_WORKERS must be >= 1, got %d", e.SimilarityWorkers)
	case e.FlushEvery < 1:
		return fmt.Errorf("ENGINE_FLUSH_EVERY must be >= 1, got %d", e.FlushEvery)
	case e.MaxFeatures < 1:
		return fmt.Errorf("ENGINE_MAX_FEATURES must be >= 1, got %d", e.MaxFeatures)
	case e.MinDF <= 0:
		return fmt.Errorf("ENGINE_MIN_DF must be positive, got %v", e.MinDF)
	case e.MinDF >= 1 && e.MinDF != math.Trunc(e.MinDF):
		return fmt.Errorf("ENGINE_MIN_DF must be a whole document count when >= 1, got %v", e.MinDF)
	case e.MaxDF <= 0:
		return fmt.Errorf("ENGINE_MAX_DF must be positive, got %v", e.MaxDF)
	case e.MaxDF > 1 && e.MaxDF != math.Trunc(e.MaxDF):
		return fmt.Errorf("ENGINE_MAX_DF must be a whole document count when > 1, got %v", e.MaxDF)
	case strings.TrimSpace(e.MatrixPath) == "":
		return fmt.Errorf("ENGINE_MATRIX_PATH is required")
	case e.TopN < 1:
		return fmt.Errorf("ENGINE_TOP_N must be >= 1, got %d", e.TopN)
	case e.MaxTopN < e.TopN:
		return fmt.Errorf("ENGINE_MAX_TOP_N (%d) must be >= ENGINE_TOP_N (%d)", e.MaxTopN, e.TopN)
	case e.EnrichConcurrency < 1:
		return fmt.Errorf("ENGINE_ENRICH_CONCURRENCY must be >= 1, got %d", e.EnrichConcurrency)
	case e.LookupTimeout <= 0:
		return fmt.Errorf("ENGINE_LOOKUP_TIMEOUT must be positive, got %v", e.LookupTimeout)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if !c.Catalog.Enabled {
		return nil
	}
	if c.Catalog.ClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required when SPOTIFY_ENABLED=true")
	}
	if c.Catalog.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required when SPOTIFY_ENABLED=true")
	}
	if err := validateHTTPURL(c.Catalog.TokenURL); err != nil {
		return fmt.Errorf("SPOTIFY_TOKEN_URL is invalid: %w", err)
	}
	if err := validateHTTPURL(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("SPOTIFY_API_URL is invalid: %w", err)
	}
	if c.Catalog.RateLimit <= 0 {
		return fmt.Errorf("SPOTIFY_RATE_LIMIT must be positive, got %v", c.Catalog.RateLimit)
	}
	if c.Catalog.RateBurst < 1 {
		return fmt.Errorf("SPOTIFY_RATE_BURST must be >= 1, got %d", c.Catalog.RateBurst)
	}
	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("CATALOG_CACHE_SIZE must be >= 0, got %d", c.Catalog.CacheSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
