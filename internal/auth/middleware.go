// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/logging"
	"github.com/tomtom215/graphrec/internal/models"
)

type contextKey string

// IdentityContextKey is where RequireAuth stores the caller's Identity.
const IdentityContextKey contextKey = "identity"

// Identity is the authenticated caller: the verified token claims plus the
// profiles row binding the subject to an integer graph user id.
type Identity struct {
	Claims  *Claims
	Profile *models.Profile
}

// IdentityFromContext returns the Identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok
}

// Middleware enforces authentication on protected routes.
type Middleware struct {
	verifier TokenVerifier
	resolver *ProfileResolver
	logger   zerolog.Logger
	security *logging.SecurityLogger
}

// NewMiddleware wires a token verifier and profile resolver together.
func NewMiddleware(verifier TokenVerifier, resolver *ProfileResolver, logger zerolog.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		resolver: resolver,
		logger:   logger.With().Str("component", "auth_middleware").Logger(),
		security: logging.NewSecurityLoggerWithLogger(logger),
	}
}

// RequireAuth verifies the request token, resolves its profile, and stores
// the Identity in the request context. 401 for missing/invalid tokens, 404
// for a valid token whose subject has no profile.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized: missing token")
			return
		}

		claims, err := m.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Token validation failed")
			m.security.LogTokenRejected("", clientIP(r), err.Error())
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized: invalid token")
			return
		}

		profile, err := m.resolver.Resolve(r.Context(), claims)
		if err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				writeJSONError(w, http.StatusNotFound, "Profile not found for token subject")
				return
			}
			m.logger.Error().Err(err).Msg("Profile resolution failed")
			writeJSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		identity := &Identity{Claims: claims, Profile: profile}
		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the token from the Authorization header (Bearer) or,
// failing that, the token cookie browsers hold after login.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", ErrNoToken
		}
		return strings.TrimSpace(parts[1]), nil
	}

	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoToken
	}
	return cookie.Value, nil
}

// writeJSONError emits the API's error envelope without importing the api
// package, which sits above this one.
func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	data, err := json.Marshal(map[string]string{"status": "error", "msg": msg})
	if err != nil {
		return
	}
	_, _ = w.Write(data)
}
