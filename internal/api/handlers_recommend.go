// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tomtom215/graphrec/internal/events"
	"github.com/tomtom215/graphrec/internal/models"
	"github.com/tomtom215/graphrec/internal/recommend"
)

// Ownership rejection messages. The wording is part of the API contract.
const (
	msgOwnInteractions = "You can only modify your own interactions."
	msgOwnPreferences  = "You can only modify your own preferences."
)

// Recommend handles GET /recommend/{user_id}?k={int}&algo={bfs|ppr}.
// k defaults and clamps inside the service; algo defaults to bfs.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	rawK := 0
	if v := r.URL.Query().Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid k")
			return
		}
		rawK = k
	}

	algo := r.URL.Query().Get("algo")
	if algo == "" {
		algo = recommend.AlgoBFS
	}

	resp, err := h.recommender.Recommend(r.Context(), userID, rawK, algo)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidAlgo) {
			respondError(w, http.StatusBadRequest, "Invalid algo: must be bfs or ppr")
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Recommendation failed")
		respondError(w, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// SetPreferences handles POST /recommend/preferences. Requires auth and
// ownership; the store write, cache invalidation, and event publish happen
// only after both checks pass.
func (h *Handlers) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if !h.requireOwnership(w, r, req.UserID, msgOwnPreferences) {
		return
	}

	genreIDs, err := h.recommender.SetPreferences(r.Context(), req.UserID, req.Genres)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", req.UserID).Msg("Preference update failed")
		respondError(w, http.StatusInternalServerError, "Failed to update preferences")
		return
	}

	event := events.NewActivityEvent(events.ActionPreferencesUpdated, req.UserID)
	event.GenreIDs = toInt64s(genreIDs)
	h.publisher.PublishActivity(r.Context(), event)

	respondSuccess(w, "Preferences updated.")
}

// GetPreferences handles GET /recommend/preferences/{user_id}. Public read;
// the body is a bare array of genre names.
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	genreIDs, err := h.store.GetPreferenceGenreIDs(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Preference read failed")
		respondError(w, http.StatusInternalServerError, "Failed to load preferences")
		return
	}

	respondJSON(w, http.StatusOK, models.GenreNamesOf(genreIDs))
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
