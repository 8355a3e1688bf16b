// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

/*
crud_interactions.go - Interaction Event Operations

This file provides database operations for the interactions table, the
system of record the in-memory graph is rebuilt from.

Key Operations:
  - CreateInteraction: idempotent insert keyed on (user_id, item_id)
  - DeleteInteraction: removes the pair; deleting a missing pair is a no-op
  - GetUserInteractions / GetUserItemIDs: per-user reads
  - GetAllInteractions: full ordered scan for startup reconciliation
  - GetPopularItemIDs: global popularity ranking for the fallback tier

Thread Safety:
CreateInteraction serializes its check-then-insert with a mutex so
concurrent submits of the same pair cannot both pass the existence probe.
*/

package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/graphrec/internal/metrics"
	"github.com/tomtom215/graphrec/internal/models"
)

// interactionWriteMutex protects the check-then-insert in CreateInteraction
var interactionWriteMutex sync.Mutex

// CreateInteraction records a (user, item) event at the given unix-second
// timestamp. The pair is unique: re-submitting an existing pair returns the
// stored row with created=false and writes nothing, so event replays and
// client retries are harmless.
func (db *DB) CreateInteraction(ctx context.Context, userID, itemID, timestamp int64) (*models.Interaction, bool, error) {
	interactionWriteMutex.Lock()
	defer interactionWriteMutex.Unlock()

	start := time.Now()

	existing, err := db.getInteractionLocked(ctx, userID, itemID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT INTO interactions (user_id, item_id, timestamp)
		VALUES (?, ?, ?)
		RETURNING id
	`
	var id int64
	err = db.conn.QueryRowContext(ctx, query, userID, itemID, timestamp).Scan(&id)
	metrics.RecordDBQuery("INSERT", "interactions", time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert interaction: %w", err)
	}

	return &models.Interaction{
		ID:        id,
		UserID:    userID,
		ItemID:    itemID,
		Timestamp: timestamp,
	}, true, nil
}

// getInteractionLocked looks up the row for a (user, item) pair. Returns
// nil without error when the pair does not exist. Caller must hold
// interactionWriteMutex when using this as an insert guard.
func (db *DB) getInteractionLocked(ctx context.Context, userID, itemID int64) (*models.Interaction, error) {
	query := `
		SELECT id, user_id, item_id, timestamp
		FROM interactions
		WHERE user_id = ? AND item_id = ?
	`
	rows, err := db.conn.QueryContext(ctx, query, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var in models.Interaction
	if err := rows.Scan(&in.ID, &in.UserID, &in.ItemID, &in.Timestamp); err != nil {
		return nil, fmt.Errorf("failed to scan interaction: %w", err)
	}
	return &in, rows.Err()
}

// DeleteInteraction removes the (user, item) pair. Returns true when a row
// was deleted, false when the pair did not exist. Both outcomes are success.
func (db *DB) DeleteInteraction(ctx context.Context, userID, itemID int64) (bool, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM interactions WHERE user_id = ? AND item_id = ?`,
		userID, itemID)
	metrics.RecordDBQuery("DELETE", "interactions", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to delete interaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// GetUserInteractions returns all interactions for a user, newest first
func (db *DB) GetUserInteractions(ctx context.Context, userID int64) ([]models.Interaction, error) {
	query := `
		SELECT id, user_id, item_id, timestamp
		FROM interactions
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]models.Interaction, 0)
	for rows.Next() {
		var in models.Interaction
		if err := rows.Scan(&in.ID, &in.UserID, &in.ItemID, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}

// GetUserItemIDs returns the set of item ids a user has interacted with.
// Recommendation assembly uses this to exclude already-seen items.
func (db *DB) GetUserItemIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT item_id FROM interactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user item ids: %w", err)
	}
	defer rows.Close()

	seen := make(map[int64]struct{})
	for rows.Next() {
		var itemID int64
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		seen[itemID] = struct{}{}
	}
	return seen, rows.Err()
}

// GetAllInteractions returns every interaction ordered by timestamp then id.
// Startup reconciliation replays this scan into the graph, so the ordering
// must be deterministic across runs.
func (db *DB) GetAllInteractions(ctx context.Context) ([]models.Interaction, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, item_id, timestamp FROM interactions ORDER BY timestamp ASC, id ASC`)
	metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query all interactions: %w", err)
	}
	defer rows.Close()

	interactions := make([]models.Interaction, 0)
	for rows.Next() {
		var in models.Interaction
		if err := rows.Scan(&in.ID, &in.UserID, &in.ItemID, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}

// CountInteractions returns the number of interaction rows
func (db *DB) CountInteractions(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return count, nil
}

// GetPopularItemIDs returns up to limit item ids ranked by interaction
// count. Ties break on ascending item id so the ranking is deterministic.
func (db *DB) GetPopularItemIDs(ctx context.Context, limit int) ([]int64, error) {
	query := `
		SELECT item_id
		FROM interactions
		GROUP BY item_id
		ORDER BY COUNT(*) DESC, item_id ASC
		LIMIT ?
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, limit)
	metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular items: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan popular item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
