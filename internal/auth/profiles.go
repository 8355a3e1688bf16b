// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/models"
)

// ProfileStore is the slice of the database layer the resolver needs.
type ProfileStore interface {
	GetProfileByUUID(ctx context.Context, profileUUID string) (*models.Profile, error)
	// EnsureProfile creates the row if missing and returns it either way.
	// A non-positive userID lets the store allocate the next free id.
	EnsureProfile(ctx context.Context, profileUUID string, userID int64, email string) (*models.Profile, error)
}

// ProfileResolver maps a verified token subject to its profiles row, which
// carries the integer user id the graph engine and ownership checks use.
//
// The local provider seeds all profiles at startup, so its resolver runs
// with autoCreate off and a missing row is a hard ErrProfileNotFound. The
// oidc provider meets subjects it has never seen, so its resolver creates
// rows on first contact.
type ProfileResolver struct {
	store      ProfileStore
	autoCreate bool
	logger     zerolog.Logger
}

// NewProfileResolver builds a resolver. autoCreate should be true only for
// the oidc provider.
func NewProfileResolver(store ProfileStore, autoCreate bool, logger zerolog.Logger) *ProfileResolver {
	return &ProfileResolver{
		store:      store,
		autoCreate: autoCreate,
		logger:     logger.With().Str("component", "profile_resolver").Logger(),
	}
}

// Resolve returns the profile for the claims' subject, creating it when the
// resolver is allowed to. ErrProfileNotFound means a valid token whose
// subject GraphRec does not know.
func (r *ProfileResolver) Resolve(ctx context.Context, claims *Claims) (*models.Profile, error) {
	subject := claims.Subject
	if subject == "" {
		return nil, ErrProfileNotFound
	}

	profile, err := r.store.GetProfileByUUID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}

	if !r.autoCreate {
		return nil, ErrProfileNotFound
	}

	profile, err = r.store.EnsureProfile(ctx, subject, 0, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	r.logger.Info().
		Str("subject", subject).
		Int64("user_id", profile.UserID).
		Msg("Created profile for new subject")

	return profile, nil
}
