// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"net/http"

	"github.com/tomtom215/graphrec/internal/events"
)

// AddInteraction handles POST /interaction/. The write sequence is store,
// then engine, then cache invalidation, then event publish; the service owns
// the first three, the handler publishes only after they succeed.
func (h *Handlers) AddInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if !h.requireOwnership(w, r, req.UserID, msgOwnInteractions) {
		return
	}

	created, err := h.recommender.AddInteraction(r.Context(), req.UserID, req.ItemID)
	if err != nil {
		h.logger.Error().Err(err).
			Int64("user_id", req.UserID).
			Int64("item_id", req.ItemID).
			Msg("Interaction create failed")
		respondError(w, http.StatusInternalServerError, "Failed to record interaction")
		return
	}

	// Repeated creates are idempotent; only a new edge makes the journal.
	if created {
		event := events.NewActivityEvent(events.ActionInteractionAdded, req.UserID)
		event.ItemID = req.ItemID
		h.publisher.PublishActivity(r.Context(), event)
	}

	respondSuccess(w, "Interaction recorded.")
}

// RemoveInteraction handles DELETE /interaction/. Removing an absent
// interaction is a no-op that still returns success.
func (h *Handlers) RemoveInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if !h.requireOwnership(w, r, req.UserID, msgOwnInteractions) {
		return
	}

	removed, err := h.recommender.RemoveInteraction(r.Context(), req.UserID, req.ItemID)
	if err != nil {
		h.logger.Error().Err(err).
			Int64("user_id", req.UserID).
			Int64("item_id", req.ItemID).
			Msg("Interaction delete failed")
		respondError(w, http.StatusInternalServerError, "Failed to remove interaction")
		return
	}

	if removed {
		event := events.NewActivityEvent(events.ActionInteractionRemoved, req.UserID)
		event.ItemID = req.ItemID
		h.publisher.PublishActivity(r.Context(), event)
	}

	respondSuccess(w, "Interaction removed.")
}

// ListInteractions handles GET /interaction/{user_id}. Public read; the body
// is a bare array of item ids.
func (h *Handlers) ListInteractions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	interactions, err := h.store.GetUserInteractions(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Interaction read failed")
		respondError(w, http.StatusInternalServerError, "Failed to load interactions")
		return
	}

	itemIDs := make([]int64, 0, len(interactions))
	for _, interaction := range interactions {
		itemIDs = append(itemIDs, interaction.ItemID)
	}

	respondJSON(w, http.StatusOK, itemIDs)
}
