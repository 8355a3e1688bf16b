// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/graphrec/internal/auth"
	"github.com/tomtom215/graphrec/internal/metrics"
	"github.com/tomtom215/graphrec/internal/models"
)

// Login handles POST /auth/login for the local provider. Invalid usernames
// and wrong passwords collapse into the same 401 so the endpoint does not
// leak which usernames exist.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.RecordLoginAttempt(auth.ProviderLocal, "failure")
		h.security.LogLoginFailure(req.Username, auth.ProviderLocal, r.RemoteAddr, r.UserAgent(), err.Error())
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.logger.Error().Err(err).Msg("Login failed")
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	metrics.RecordLoginAttempt(auth.ProviderLocal, "success")
	h.security.LogLoginSuccess(result.ProfileUUID, result.Username, auth.ProviderLocal, r.RemoteAddr, r.UserAgent())

	// Cookie for browsers, token in the body for API clients.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, models.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}
