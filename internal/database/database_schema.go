// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

/*
database_schema.go - Database Schema Management

This file manages the DuckDB database schema including table creation
and index management.

Tables:
  - items: Media catalog (id, title, category)
  - interactions: Durable (user, item) events; the system of record the
    graph is rebuilt from
  - user_preferences: Per-user genre preference rows, replaced wholesale
    on every write
  - profiles: Auth subject (UUID) to integer user id mapping
  - graph_snapshots: Serialized graph blobs; at most one row by convention
  - activity_log: Append-only journal fed by the event pipeline

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements. Row ids
come from explicit sequences because DuckDB has no auto-increment
primary keys. Post-release schema changes go through the versioned
migrations in migrations.go.

Index Strategy:
Indexes cover the hot read paths: per-user interaction lookups, the
(user_id, item_id) idempotency probe, per-user preference reads, and the
activity journal scan ordered by recency.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		// Row id sequences. DuckDB has no auto-increment primary keys.
		`CREATE SEQUENCE IF NOT EXISTS interactions_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS user_preferences_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS profiles_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS graph_snapshots_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS activity_log_id_seq;`,

		// Media catalog. Ids are assigned by the seed data or an import,
		// never generated here.
		`CREATE TABLE IF NOT EXISTS items (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL
		);`,

		// Interaction events. timestamp is unix seconds. The
		// (user_id, item_id) pair is unique; CreateInteraction enforces it
		// with a check-then-insert so replays stay idempotent.
		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGINT PRIMARY KEY DEFAULT nextval('interactions_id_seq'),
			user_id BIGINT NOT NULL,
			item_id BIGINT NOT NULL,
			timestamp BIGINT NOT NULL
		);`,

		// Genre preferences. Writes replace all rows for a user in one
		// transaction, so partial preference sets never exist.
		`CREATE TABLE IF NOT EXISTS user_preferences (
			id BIGINT PRIMARY KEY DEFAULT nextval('user_preferences_id_seq'),
			user_id BIGINT NOT NULL,
			genre_id INTEGER NOT NULL
		);`,

		// Auth subject to user id mapping.
		`CREATE TABLE IF NOT EXISTS profiles (
			id BIGINT PRIMARY KEY DEFAULT nextval('profiles_id_seq'),
			uuid TEXT NOT NULL UNIQUE,
			user_id BIGINT NOT NULL UNIQUE,
			email TEXT UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Graph snapshots. ReplaceSnapshot deletes all rows and inserts one
		// in a single transaction, so readers see exactly zero or one row.
		`CREATE TABLE IF NOT EXISTS graph_snapshots (
			id BIGINT PRIMARY KEY DEFAULT nextval('graph_snapshots_id_seq'),
			binary_data BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Activity journal. event_id carries the publisher's UUID; the
		// UNIQUE constraint backs the consumer's dedup check.
		`CREATE TABLE IF NOT EXISTS activity_log (
			id BIGINT PRIMARY KEY DEFAULT nextval('activity_log_id_seq'),
			event_id TEXT NOT NULL UNIQUE,
			action TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			item_id BIGINT,
			occurred_at TIMESTAMP NOT NULL
		);`,
	}
}

// createIndexes creates indexes for the hot query paths
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_id ON interactions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_item_id ON interactions(item_id);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_item ON interactions(user_id, item_id);`,
		`CREATE INDEX IF NOT EXISTS idx_preferences_user_id ON user_preferences(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_occurred_at ON activity_log(occurred_at DESC);`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
