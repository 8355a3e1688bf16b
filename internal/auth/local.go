// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/graphrec/internal/config"
)

// dummyHash is a bcrypt hash of a random throwaway password. Logins for
// unknown usernames compare against it so the failure takes the same time
// as a wrong password for a real user.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// LocalAuthenticator verifies username/password logins against the
// configured user list and issues JWTs for successful ones.
type LocalAuthenticator struct {
	users  map[string]config.UserConfig
	jwt    *JWTManager
	logger zerolog.Logger
}

// NewLocalAuthenticator indexes the configured users by username.
func NewLocalAuthenticator(users []config.UserConfig, jwtManager *JWTManager, logger zerolog.Logger) *LocalAuthenticator {
	byName := make(map[string]config.UserConfig, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	return &LocalAuthenticator{
		users:  byName,
		jwt:    jwtManager,
		logger: logger.With().Str("component", "local_auth").Logger(),
	}
}

// LoginResult is a successful login: the signed token plus the metadata the
// login response returns to the client.
type LoginResult struct {
	Token       string
	ExpiresAt   time.Time
	Username    string
	Role        string
	ProfileUUID string
}

// Login verifies the password with bcrypt and returns a signed token whose
// subject is the user's profile UUID. All failures collapse into
// ErrInvalidCredentials.
func (a *LocalAuthenticator) Login(_ context.Context, username, password string) (*LoginResult, error) {
	user, known := a.users[username]
	if !known {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.Warn().Str("username", username).Msg("Login failed")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := a.jwt.GenerateToken(user.ProfileUUID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	a.logger.Info().Str("username", username).Str("role", user.Role).Msg("Login successful")

	return &LoginResult{
		Token:       token,
		ExpiresAt:   expiresAt,
		Username:    user.Username,
		Role:        user.Role,
		ProfileUUID: user.ProfileUUID,
	}, nil
}

// SeedProfiles creates the profiles rows for every configured user so their
// tokens resolve on first use. Idempotent; startup calls it on every boot.
func (a *LocalAuthenticator) SeedProfiles(ctx context.Context, store ProfileStore) error {
	for _, user := range a.users {
		if user.ProfileUUID == "" || user.UserID <= 0 {
			return fmt.Errorf("user %q needs both profile_uuid and user_id", user.Username)
		}
		if _, err := store.EnsureProfile(ctx, user.ProfileUUID, user.UserID, user.Email); err != nil {
			return fmt.Errorf("failed to seed profile for %q: %w", user.Username, err)
		}
	}
	return nil
}
