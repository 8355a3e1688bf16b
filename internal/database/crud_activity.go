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
	"time"

	"github.com/tomtom215/graphrec/internal/metrics"
	"github.com/tomtom215/graphrec/internal/models"
)

// activityWriteMutex protects the check-then-insert in AppendActivity
var activityWriteMutex sync.Mutex

// AppendActivity records one event in the activity journal. Appends are
// idempotent on event_id: JetStream redeliveries of an already-journaled
// event return created=false and write nothing.
func (db *DB) AppendActivity(ctx context.Context, entry *models.ActivityEntry) (bool, error) {
	activityWriteMutex.Lock()
	defer activityWriteMutex.Unlock()

	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_log WHERE event_id = ?`, entry.EventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe activity log: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	// item_id is NULL for actions without an item (preference updates).
	itemID := sql.NullInt64{Int64: entry.ItemID, Valid: entry.ItemID != 0}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO activity_log (event_id, action, user_id, item_id, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		entry.EventID, entry.Action, entry.UserID, itemID, entry.OccurredAt)
	metrics.RecordDBQuery("INSERT", "activity_log", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to append activity: %w", err)
	}
	return true, nil
}

// GetRecentActivity returns up to limit journal entries, newest first
func (db *DB) GetRecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	query := `
		SELECT id, event_id, action, user_id, item_id, occurred_at
		FROM activity_log
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ActivityEntry, 0, limit)
	for rows.Next() {
		var e models.ActivityEntry
		var itemID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.EventID, &e.Action, &e.UserID, &itemID, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		e.ItemID = itemID.Int64
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountActivity returns the number of journal rows
func (db *DB) CountActivity(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_log`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activity entries: %w", err)
	}
	return count, nil
}
