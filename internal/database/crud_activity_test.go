// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/graphrec/internal/models"
)

func TestAppendActivity_IdempotentOnEventID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	entry := &models.ActivityEntry{
		EventID:    "evt-001",
		Action:     "interaction_added",
		UserID:     1,
		ItemID:     101,
		OccurredAt: time.Now().UTC(),
	}

	created, err := db.AppendActivity(ctx, entry)
	if err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}
	if !created {
		t.Error("first append reported created=false")
	}

	// Redelivery of the same event id must not create a second row.
	created, err = db.AppendActivity(ctx, entry)
	if err != nil {
		t.Fatalf("second AppendActivity failed: %v", err)
	}
	if created {
		t.Error("duplicate append reported created=true")
	}

	count, err := db.CountActivity(ctx)
	if err != nil {
		t.Fatalf("CountActivity failed: %v", err)
	}
	if count != 1 {
		t.Errorf("activity rows = %d, want 1", count)
	}
}

func TestAppendActivity_NoItemID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	entry := &models.ActivityEntry{
		EventID:    "evt-prefs",
		Action:     "preferences_updated",
		UserID:     3,
		OccurredAt: time.Now().UTC(),
	}
	if _, err := db.AppendActivity(ctx, entry); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}

	entries, err := db.GetRecentActivity(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentActivity failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	// A preferences event has no item; it round-trips as zero.
	if entries[0].ItemID != 0 {
		t.Errorf("item id = %d, want 0", entries[0].ItemID)
	}
	if entries[0].Action != "preferences_updated" {
		t.Errorf("action = %q, want preferences_updated", entries[0].Action)
	}
}

func TestGetRecentActivity_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []struct {
		id string
		at time.Time
	}{
		{"evt-a", base},
		{"evt-b", base.Add(2 * time.Minute)},
		{"evt-c", base.Add(1 * time.Minute)},
	}
	for _, ev := range events {
		entry := &models.ActivityEntry{
			EventID:    ev.id,
			Action:     "interaction_added",
			UserID:     1,
			ItemID:     101,
			OccurredAt: ev.at,
		}
		if _, err := db.AppendActivity(ctx, entry); err != nil {
			t.Fatalf("AppendActivity(%s) failed: %v", ev.id, err)
		}
	}

	entries, err := db.GetRecentActivity(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentActivity failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	wantOrder := []string{"evt-b", "evt-c", "evt-a"}
	for i, want := range wantOrder {
		if entries[i].EventID != want {
			t.Errorf("position %d: %s, want %s", i, entries[i].EventID, want)
		}
	}

	// Limit trims from the oldest end.
	entries, err = db.GetRecentActivity(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentActivity with limit failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].EventID != "evt-b" || entries[1].EventID != "evt-c" {
		t.Errorf("got [%s %s], want [evt-b evt-c]", entries[0].EventID, entries[1].EventID)
	}
}

func TestGetRecentActivity_Empty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	entries, err := db.GetRecentActivity(ctx, 5)
	if err != nil {
		t.Fatalf("GetRecentActivity failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", entries)
	}
}
