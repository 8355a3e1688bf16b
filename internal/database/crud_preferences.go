// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/graphrec/internal/metrics"
)

// ReplacePreferences replaces a user's stored genre preferences with the
// given set. Delete and inserts run in one transaction so readers never see
// a partially written preference set. An empty genreIDs slice clears the
// user's preferences.
func (db *DB) ReplacePreferences(ctx context.Context, userID int64, genreIDs []int) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin preferences transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_preferences WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}

	for _, genreID := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_preferences (user_id, genre_id) VALUES (?, ?)`,
			userID, genreID); err != nil {
			return fmt.Errorf("failed to insert preference genre %d: %w", genreID, err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("REPLACE", "user_preferences", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}

// GetPreferenceGenreIDs returns a user's stored genre ids in insertion
// order. Users with no stored preferences get an empty slice.
func (db *DB) GetPreferenceGenreIDs(ctx context.Context, userID int64) ([]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT genre_id FROM user_preferences WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	genreIDs := make([]int, 0)
	for rows.Next() {
		var genreID int
		if err := rows.Scan(&genreID); err != nil {
			return nil, fmt.Errorf("failed to scan preference genre: %w", err)
		}
		genreIDs = append(genreIDs, genreID)
	}
	return genreIDs, rows.Err()
}
