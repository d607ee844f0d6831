// Lyricsim - Lyrics Similarity Song Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lyricsim

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lyricsim/internal/logging"
	"github.com/tomtom215/lyricsim/internal/recommend"
	"github.com/tomtom215/lyricsim/internal/validation"
)

// maxRequestBody bounds the /recommend request body.
const maxRequestBody = 64 << 10

const (
	msgSongRequired = "Song name is required"
	msgInvalidJSON  = "Invalid JSON body"
	msgNotReady     = "Recommendation engine is not ready"
	msgTooLarge     = "Request body too large"
)

// Recommend handles POST /recommend.
//
// The response body is unenveloped:
//
//	{"local_recommendations": [...], "spotify_recommendations": [...]}
//
// A missing song or malformed body is rejected with 400 and
// {"error": "..."} before the engine is consulted.
//
// @Summary Recommend songs
// @Description Ranks songs by lyrics similarity to the named song and adds a direct catalog search.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body validation.RecommendRequest true "Song, optional artist and count"
// @Success 200 {object} recommend.Response
// @Failure 400 {object} flatError "Missing song or malformed body"
// @Failure 413 {object} flatError "Body too large"
// @Failure 503 {object} flatError "Engine still building"
// @Router /recommend [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req validation.RecommendRequest

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, flatError{Error: msgTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, flatError{Error: msgInvalidJSON})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeJSON(w, http.StatusBadRequest, flatError{Error: msgSongRequired})
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("component", "api").Msg("Rejected malformed recommend body")
		writeJSON(w, http.StatusBadRequest, flatError{Error: msgInvalidJSON})
		return
	}

	req.Song = strings.TrimSpace(req.Song)
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Song == "" {
		writeJSON(w, http.StatusBadRequest, flatError{Error: msgSongRequired})
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeJSON(w, http.StatusBadRequest, flatError{Error: verr.Error()})
		return
	}

	if h.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, flatError{Error: msgNotReady})
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	resp := h.engine.Recommend(ctx, recommend.Request{
		Song:   req.Song,
		Artist: req.Artist,
		TopN:   req.TopN,
	})
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /get.
//
// @Summary Echo
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /get [get]
func (h *Handler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "GET request received"})
}
