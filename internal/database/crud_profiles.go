// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/tomtom215/graphrec/internal/models"
)

// profileWriteMutex protects the check-then-insert in EnsureProfile
var profileWriteMutex sync.Mutex

// scanProfile scans one profile row. email is nullable: profiles created
// for local users without an address store NULL, never the empty string,
// or the UNIQUE constraint would reject the second such user.
func scanProfile(rows *sql.Rows) (*models.Profile, error) {
	var p models.Profile
	var email sql.NullString
	if err := rows.Scan(&p.ID, &p.UUID, &p.UserID, &email, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	p.Email = email.String
	return &p, nil
}

// GetProfileByUUID looks up a profile by its auth subject UUID. Returns nil
// without error when no profile exists for the UUID.
func (db *DB) GetProfileByUUID(ctx context.Context, profileUUID string) (*models.Profile, error) {
	query := `
		SELECT id, uuid, user_id, email, created_at
		FROM profiles
		WHERE uuid = ?
	`
	rows, err := db.conn.QueryContext(ctx, query, profileUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanProfile(rows)
}

// GetProfileByUserID looks up a profile by its integer user id. Returns nil
// without error when no profile exists for the id.
func (db *DB) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `
		SELECT id, uuid, user_id, email, created_at
		FROM profiles
		WHERE user_id = ?
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile by user id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanProfile(rows)
}

// EnsureProfile creates the (uuid, user_id) mapping if it is missing and
// returns the stored profile either way. Startup calls this for every
// configured local user, and the OIDC path calls it on first login of a new
// subject, so it must tolerate both concurrent calls and existing rows.
// A non-positive userID allocates the next free id inside the write lock.
func (db *DB) EnsureProfile(ctx context.Context, profileUUID string, userID int64, email string) (*models.Profile, error) {
	profileWriteMutex.Lock()
	defer profileWriteMutex.Unlock()

	existing, err := db.GetProfileByUUID(ctx, profileUUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if userID <= 0 {
		userID, err = db.NextUserID(ctx)
		if err != nil {
			return nil, err
		}
	}

	emailArg := sql.NullString{String: email, Valid: email != ""}

	query := `
		INSERT INTO profiles (uuid, user_id, email)
		VALUES (?, ?, ?)
		RETURNING id, uuid, user_id, email, created_at
	`
	var p models.Profile
	var storedEmail sql.NullString
	err = db.conn.QueryRowContext(ctx, query, profileUUID, userID, emailArg).
		Scan(&p.ID, &p.UUID, &p.UserID, &storedEmail, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	p.Email = storedEmail.String
	return &p, nil
}

// NextUserID returns the lowest free integer user id for a brand-new OIDC
// subject. Caller must hold no assumptions about gaps; ids are never reused
// but configured local users may occupy arbitrary low ids.
func (db *DB) NextUserID(ctx context.Context) (int64, error) {
	var next int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(user_id), 0) + 1 FROM profiles`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next user id: %w", err)
	}
	return next, nil
}
