// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package authz

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/auth"
)

// Middleware enforces role permissions on routes that already passed
// auth.RequireAuth. It must run inside that middleware; a request without
// an Identity in context is rejected outright.
type Middleware struct {
	enforcer *Enforcer
	logger   zerolog.Logger
}

// NewMiddleware creates authorization middleware around an enforcer.
func NewMiddleware(enforcer *Enforcer, logger zerolog.Logger) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		logger:   logger.With().Str("component", "authz_middleware").Logger(),
	}
}

// AuthorizeRequest derives the object from the request path and the action
// from the HTTP method, then checks the caller's role against the policy.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeForbidden(w, "Forbidden: no authentication context")
			return
		}

		action := methodToAction(r.Method)
		object := r.URL.Path

		allowed, err := m.enforcer.Enforce(identity.Claims.Role, object, action)
		if err != nil {
			m.logger.Error().Err(err).Msg("Authorization error")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !allowed {
			m.logger.Warn().
				Str("role", identity.Claims.Role).
				Str("object", object).
				Str("action", action).
				Msg("Authorization denied")
			writeForbidden(w, "Forbidden: insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

func writeForbidden(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusForbidden, msg)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	data, err := json.Marshal(map[string]string{"status": "error", "msg": msg})
	if err != nil {
		return
	}
	_, _ = w.Write(data)
}
