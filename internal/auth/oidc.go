// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/graphrec/internal/config"
)

// OIDCVerifier validates bearer tokens against an external OIDC issuer
// using the certified zitadel verifier: signature via the issuer's JWKS,
// issuer claim, audience (client id), expiry, and algorithm checks all
// happen inside rp.VerifyIDToken. GraphRec acts purely as a resource
// server; it never drives the login flow or issues tokens in this mode.
type OIDCVerifier struct {
	rp     rp.RelyingParty
	logger zerolog.Logger
}

// NewOIDCVerifier performs OIDC discovery against the configured issuer.
// The context bounds the discovery request.
func NewOIDCVerifier(ctx context.Context, cfg config.OIDCConfig, logger zerolog.Logger) (*OIDCVerifier, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("oidc issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("oidc client_id is required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	// No client secret and no redirect URL: verification only.
	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.Issuer,
		cfg.ClientID,
		"",
		"",
		[]string{"openid", "profile", "email"},
		rp.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relying party: %w", err)
	}

	return &OIDCVerifier{
		rp:     relyingParty,
		logger: logger.With().Str("component", "oidc_verifier").Logger(),
	}, nil
}

// VerifyToken implements TokenVerifier. The issuer's claims are mapped onto
// the same Claims shape the local provider produces: sub becomes the
// profile UUID, preferred_username (then email, then sub) the username, and
// an optional "role" claim the role, defaulting to user.
func (v *OIDCVerifier) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	idClaims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, token, v.rp.IDTokenVerifier())
	if err != nil {
		v.logger.Debug().Err(err).Msg("OIDC token verification failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	username := idClaims.PreferredUsername
	if username == "" {
		username = idClaims.Email
	}
	if username == "" {
		username = idClaims.Subject
	}

	role := RoleUser
	if raw, ok := idClaims.Claims["role"].(string); ok && raw != "" {
		role = raw
	}

	return &Claims{
		Username: username,
		Role:     role,
		Email:    idClaims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: idClaims.Subject,
		},
	}, nil
}

// Issuer returns the verified issuer URL for the public config endpoint.
func (v *OIDCVerifier) Issuer() string {
	return v.rp.Issuer()
}
