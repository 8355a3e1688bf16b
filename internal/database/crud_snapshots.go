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

// ReplaceSnapshot stores a serialized graph, replacing any previous
// snapshot. Delete and insert run in one transaction so the table holds
// exactly zero or one row at all times; a crash mid-save leaves the old
// snapshot intact.
func (db *DB) ReplaceSnapshot(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("refusing to store empty snapshot")
	}

	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM graph_snapshots`); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO graph_snapshots (binary_data) VALUES (?)`, data); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	err = tx.Commit()
	metrics.RecordDBQuery("REPLACE", "graph_snapshots", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the stored snapshot blob and its creation time.
// Returns nil data without error when no snapshot exists.
func (db *DB) GetLatestSnapshot(ctx context.Context) ([]byte, time.Time, error) {
	query := `
		SELECT binary_data, created_at
		FROM graph_snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, time.Time{}, rows.Err()
	}

	var data []byte
	var createdAt time.Time
	if err := rows.Scan(&data, &createdAt); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return data, createdAt, rows.Err()
}
