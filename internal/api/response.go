// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/graphrec/internal/logging"
	"github.com/tomtom215/graphrec/internal/models"
)

// respondJSON writes payload as JSON with the given status code. Encode
// failures are logged, not surfaced; the status line is already on the wire.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the uniform {status:"error", msg} body.
func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, models.StatusResponse{Status: models.StatusError, Msg: msg})
}

// respondSuccess writes the uniform {status:"success", msg} body with 200.
func respondSuccess(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: models.StatusSuccess, Msg: msg})
}
