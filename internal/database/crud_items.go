// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

/*
crud_items.go - Catalog Operations

This file provides database operations for the media catalog:
  - SeedCatalog: idempotent insertion of the starter catalog
  - ListItems: full catalog dump for GET /items
  - GetItemsByIDs: order-preserving hydration of recommendation id lists
  - GetCatalogItemIDs: ascending-id scan backing the catalog fallback tier
  - CountItems: catalog size for health reporting
*/

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/graphrec/internal/logging"
	"github.com/tomtom215/graphrec/internal/models"
)

// seedItems is the starter catalog inserted into empty databases. Ids are
// stable and referenced by the demo clients, so never renumber them.
var seedItems = []models.Item{
	{ID: 101, Title: "The Matrix", Category: "Sci-Fi"},
	{ID: 102, Title: "Inception", Category: "Sci-Fi"},
	{ID: 103, Title: "The Godfather", Category: "Crime"},
	{ID: 104, Title: "Toy Story", Category: "Animation"},
	{ID: 105, Title: "Pulp Fiction", Category: "Crime"},
	{ID: 106, Title: "Interstellar", Category: "Sci-Fi"},
	{ID: 107, Title: "Finding Nemo", Category: "Animation"},
	{ID: 108, Title: "Spirited Away", Category: "Animation"},
	{ID: 109, Title: "The Dark Knight", Category: "Action"},
}

// SeedCatalog inserts the starter catalog if the items table is empty.
// Calling it against a populated database is a no-op, so every startup
// can run it unconditionally.
func (db *DB) SeedCatalog(ctx context.Context) error {
	count, err := db.CountItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to count items before seeding: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, item := range seedItems {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO items (id, title, category) VALUES (?, ?, ?)`,
			item.ID, item.Title, item.Category)
		if err != nil {
			return fmt.Errorf("failed to seed item %d (%s): %w", item.ID, item.Title, err)
		}
	}

	logging.Info().Int("count", len(seedItems)).Msg("Seeded starter catalog")
	return nil
}

// ListItems returns the full catalog ordered by id
func (db *DB) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, category FROM items ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Title, &item.Category); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItemsByIDs hydrates the given item ids, preserving the order of ids.
// Ids without a catalog row are silently dropped, so the result may be
// shorter than the input.
func (db *DB) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT id, title, category FROM items WHERE id IN (%s)`, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]models.Item, len(ids))
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Title, &item.Category); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		byID[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Re-order to match the caller's ranking.
	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// GetCatalogItemIDs returns up to limit item ids in ascending id order.
// This backs the catalog fallback tier, which fills remaining slots with
// the lowest-numbered unseen items.
func (db *DB) GetCatalogItemIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM items ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan catalog id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountItems returns the number of catalog rows
func (db *DB) CountItems(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
