// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

/*
Package main is the entry point for the Lyricsim server.

Lyricsim recommends songs whose lyrics are similar to a requested song. At
startup it loads a lyrics CSV, builds TF-IDF vectors and writes the full
pairwise cosine similarity matrix to disk. Requests are then answered from
that file, with each recommendation enriched from the Spotify catalog when
credentials are configured.

# Startup

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON or console output
 3. Dataset: DuckDB read_csv with an optional seeded reservoir sample
 4. Catalog: Spotify client, circuit breaker and two-tier lookup cache
 5. Engine: preprocessing, vectorizer fit and similarity build
 6. Supervisor tree: HTTP server and cache GC under suture v4

Any failure before the supervisor starts is fatal. Building the similarity
matrix for 20000 songs writes 1.6 GB and can take several minutes.

# Supervisor Tree

	lyricsim
	├── maintenance-layer
	│   └── cache-gc (only with CATALOG_CACHE_PATH)
	└── api-layer
	    └── http-server

# Example Usage

	export DATA_PATH=spotify_millsongdata.csv
	export SPOTIFY_CLIENT_ID=...
	export SPOTIFY_CLIENT_SECRET=...
	./lyricsim

	curl -X POST localhost:5555/recommend \
	  -H 'Content-Type: application/json' \
	  -d '{"song": "Imagine", "artist": "John Lennon"}'

Without Spotify credentials set SPOTIFY_ENABLED=false. Recommendations then
carry synthetic local identifiers only.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
HTTP_SHUTDOWN_TIMEOUT, then the similarity file is removed and the catalog
cache is closed.
*/
package main
