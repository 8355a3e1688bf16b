// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/config"
)

// Auth providers.
const (
	ProviderLocal = "local"
	ProviderOIDC  = "oidc"
)

// Roles carried in the token role claim.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TokenCookieName is the cookie checked when no Authorization header is set.
const TokenCookieName = "token"

// TokenVerifier validates a raw token string and returns its claims.
// JWTManager implements it for the local provider, OIDCVerifier for oidc.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}

// NewVerifier builds the token verifier for the configured provider. The
// context bounds OIDC discovery, which performs network requests.
func NewVerifier(ctx context.Context, cfg config.AuthConfig, logger zerolog.Logger) (TokenVerifier, error) {
	switch cfg.Provider {
	case ProviderLocal, "":
		return NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	case ProviderOIDC:
		return NewOIDCVerifier(ctx, cfg.OIDC, logger)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}
