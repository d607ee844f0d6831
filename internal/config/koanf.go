// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lyricsim/config.yaml",
	"/etc/lyricsim/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma separated env values for slice fields.
// Values that came from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Dataset
	"data_path":        "dataset.path",
	"data_subset_size": "dataset.subset_size",
	"data_sample_seed": "dataset.sample_seed",

	// Engine
	"engine_preprocess_batch_size": "engine.preprocess_batch_size",
	"engine_progress_every":        "engine.progress_every",
	"engine_max_features":          "engine.max_features",
	"engine_min_df":                "engine.min_df",
	"engine_max_df":                "engine.max_df",
	"engine_similarity_batch_size": "engine.similarity_batch_size",
	"engine_flush_every":           "engine.flush_every",
	"engine_matrix_path":           "engine.matrix_path",
	"engine_similarity_workers":    "engine.similarity_workers",
	"engine_top_n":                 "engine.top_n",
	"engine_max_top_n":             "engine.max_top_n",
	"engine_seed":                  "engine.seed",
	"engine_enrich_concurrency":    "engine.enrich_concurrency",
	"engine_lookup_timeout":        "engine.lookup_timeout",
	"engine_request_timeout":       "engine.request_timeout",

	// Catalog
	"spotify_enabled":         "catalog.enabled",
	"spotify_client_id":       "catalog.client_id",
	"spotify_client_secret":   "catalog.client_secret",
	"spotify_token_url":       "catalog.token_url",
	"spotify_api_url":         "catalog.base_url",
	"spotify_market":          "catalog.market",
	"spotify_timeout":         "catalog.timeout",
	"spotify_rate_limit":      "catalog.rate_limit",
	"spotify_rate_burst":      "catalog.rate_burst",
	"catalog_cache_size":      "catalog.cache_size",
	"catalog_cache_ttl":       "catalog.cache_ttl",
	"catalog_cache_path":      "catalog.cache_path",
	"catalog_cache_gc_period": "catalog.cache_gc_interval",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are ignored.
//
//   - DATA_PATH -> dataset.path
//   - SPOTIFY_CLIENT_ID -> catalog.client_id
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
