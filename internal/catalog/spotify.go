// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

/*
spotify.go - Spotify Web API Client

Track search against the Spotify Web API using the client credentials flow.
Tokens are fetched and refreshed by golang.org/x/oauth2; outbound calls are
throttled with a token bucket.

API Reference: https://developer.spotify.com/documentation/web-api/reference/search
*/

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/tomtom215/lyricsim/internal/metrics"
)

// maxSearchLimit is the largest page size the search endpoint accepts.
const maxSearchLimit = 50

// SpotifyConfig configures SpotifyClient.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string

	// Market restricts results to one ISO 3166-1 country. Empty means any.
	Market string

	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// SpotifyClient searches the Spotify catalog.
type SpotifyClient struct {
	baseURL     string
	market      string
	credentials *clientcredentials.Config
	tokenClient *http.Client
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      zerolog.Logger
}

var _ Searcher = (*SpotifyClient)(nil)

// spotify search response, trimmed to the fields we map
type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// NewSpotifyClient creates a client. No network traffic happens until the
// first Ping or Search.
func NewSpotifyClient(cfg SpotifyConfig, logger zerolog.Logger) (*SpotifyClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNoCredentials
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 1
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	// The token source keeps this context for refreshes, so it must outlive
	// any single request.
	base := &http.Client{Timeout: cfg.Timeout}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(tokenCtx, cc.TokenSource(tokenCtx))
	httpClient.Timeout = cfg.Timeout

	return &SpotifyClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		market:      cfg.Market,
		credentials: cc,
		tokenClient: base,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:      logger.With().Str("component", "spotify").Logger(),
	}, nil
}

// Ping fetches a fresh access token, verifying the credentials.
func (c *SpotifyClient) Ping(ctx context.Context) error {
	start := time.Now()
	_, err := c.credentials.Token(context.WithValue(ctx, oauth2.HTTPClient, c.tokenClient))
	metrics.RecordCatalogRequest("token", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("spotify token request failed: %w", err)
	}
	return nil
}

// Search runs a track search. limit is clamped to [1, 50].
func (c *SpotifyClient) Search(ctx context.Context, query string, limit int) (tracks []Track, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogRequest("search", time.Since(start), err)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("spotify rate limiter: %w", err)
	}

	resp, err := c.doRequest(ctx, "/search", c.searchParams(query, limit))
	if err != nil {
		return nil, fmt.Errorf("spotify search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if readErr != nil {
			return nil, fmt.Errorf("spotify search returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("spotify search returned status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode spotify search: %w", err)
	}

	tracks = make([]Track, 0, len(result.Tracks.Items))
	for i := range result.Tracks.Items {
		tracks = append(tracks, toTrack(&result.Tracks.Items[i]))
	}

	c.logger.Debug().Str("query", query).Int("results", len(tracks)).Msg("Spotify search")
	return tracks, nil
}

func (c *SpotifyClient) searchParams(query string, limit int) url.Values {
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))
	if c.market != "" {
		params.Set("market", c.market)
	}
	return params
}

// doRequest performs an authenticated GET against the Web API
func (c *SpotifyClient) doRequest(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func toTrack(st *spotifyTrack) Track {
	t := Track{
		ID:    st.ID,
		Title: st.Name,
	}
	if len(st.Artists) > 0 {
		t.Artist = st.Artists[0].Name
	}
	if len(st.Album.Images) > 0 && st.Album.Images[0].URL != "" {
		cover := st.Album.Images[0].URL
		t.CoverURL = &cover
	}
	return t
}
