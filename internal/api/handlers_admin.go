// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/graphrec/internal/models"
	"github.com/tomtom215/graphrec/internal/recommend"
)

// Activity listing bounds for GET /admin/activity.
const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ForceSnapshot handles POST /admin/snapshot: an immediate engine
// checkpoint outside the normal shutdown save. An empty graph is a 409, not
// a save; overwriting a good snapshot with nothing is never acceptable.
func (h *Handlers) ForceSnapshot(w http.ResponseWriter, r *http.Request) {
	itemCount, err := h.snapshots.SaveNow(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrEmptyGraph):
			respondError(w, http.StatusConflict, "Engine graph is empty; snapshot skipped")
		case errors.Is(err, recommend.ErrCapabilityAbsent):
			respondError(w, http.StatusNotImplemented, "Engine does not support snapshots")
		default:
			h.logger.Error().Err(err).Msg("Forced snapshot failed")
			respondError(w, http.StatusInternalServerError, "Snapshot failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, models.SnapshotResponse{
		Status:    models.StatusSuccess,
		ItemCount: itemCount,
		SavedAt:   time.Now().UTC(),
	})
}

// RecentActivity handles GET /admin/activity?limit=N: the newest journal
// rows, newest first.
func (h *Handlers) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	entries, err := h.store.GetRecentActivity(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Activity read failed")
		respondError(w, http.StatusInternalServerError, "Failed to load activity")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
