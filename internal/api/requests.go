// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/graphrec/internal/validation"
)

// maxRequestBody caps mutation payloads. Interaction and preference bodies
// are tiny; anything near this limit is malformed or hostile.
const maxRequestBody = 1 << 20 // 1 MB

// InteractionRequest is the body of POST /interaction/ and
// DELETE /interaction/.
type InteractionRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

// PreferencesRequest is the body of POST /recommend/preferences. An empty
// genre list is valid and clears the user's preferences.
type PreferencesRequest struct {
	UserID int64    `json:"user_id" validate:"required,gt=0"`
	Genres []string `json:"genres"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=128"`
	Password string `json:"password" validate:"required,min=1,max=256"`
}

// decodeRequest reads and validates a JSON body into dst. On failure it
// writes a 400 response and returns false; the caller just returns.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return false
	}

	return true
}
