// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package database

import (
	"context"
	"testing"
	"time"
)

func TestCreateInteraction_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, created, err := db.CreateInteraction(ctx, 1, 101, 1700000000)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if !created {
		t.Fatal("first create reported created=false")
	}
	if first.UserID != 1 || first.ItemID != 101 || first.Timestamp != 1700000000 {
		t.Errorf("unexpected row: %+v", first)
	}

	// The same pair again, even with a different timestamp, must not write.
	second, created, err := db.CreateInteraction(ctx, 1, 101, 1800000000)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if created {
		t.Error("duplicate create reported created=true")
	}
	if second.ID != first.ID {
		t.Errorf("duplicate create returned row %d, want original %d", second.ID, first.ID)
	}
	if second.Timestamp != first.Timestamp {
		t.Errorf("duplicate create mutated timestamp: %d, want %d", second.Timestamp, first.Timestamp)
	}

	count, err := db.CountInteractions(ctx)
	if err != nil {
		t.Fatalf("CountInteractions failed: %v", err)
	}
	if count != 1 {
		t.Errorf("interactions = %d, want 1", count)
	}
}

func TestCreateInteraction_DistinctPairs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	pairs := []struct{ user, item int64 }{
		{1, 101}, {1, 102}, {2, 101}, {3, 105},
	}
	for _, p := range pairs {
		if _, created, err := db.CreateInteraction(ctx, p.user, p.item, time.Now().Unix()); err != nil || !created {
			t.Fatalf("create (%d,%d) = created %v, err %v", p.user, p.item, created, err)
		}
	}

	count, err := db.CountInteractions(ctx)
	if err != nil {
		t.Fatalf("CountInteractions failed: %v", err)
	}
	if count != len(pairs) {
		t.Errorf("interactions = %d, want %d", count, len(pairs))
	}
}

func TestDeleteInteraction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, _, err := db.CreateInteraction(ctx, 1, 101, 1700000000); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted, err := db.DeleteInteraction(ctx, 1, 101)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !deleted {
		t.Error("delete of existing pair reported deleted=false")
	}

	// Deleting a pair that does not exist succeeds without effect.
	deleted, err = db.DeleteInteraction(ctx, 1, 101)
	if err != nil {
		t.Fatalf("second delete errored: %v", err)
	}
	if deleted {
		t.Error("delete of missing pair reported deleted=true")
	}

	count, err := db.CountInteractions(ctx)
	if err != nil {
		t.Fatalf("CountInteractions failed: %v", err)
	}
	if count != 0 {
		t.Errorf("interactions = %d, want 0", count)
	}
}

func TestGetUserInteractions_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seed := []struct {
		item int64
		ts   int64
	}{
		{101, 1700000100},
		{102, 1700000300},
		{103, 1700000200},
	}
	for _, s := range seed {
		if _, _, err := db.CreateInteraction(ctx, 7, s.item, s.ts); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	// Another user's rows must not leak in.
	if _, _, err := db.CreateInteraction(ctx, 8, 104, 1700000400); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := db.GetUserInteractions(ctx, 7)
	if err != nil {
		t.Fatalf("GetUserInteractions failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d interactions, want 3", len(got))
	}

	wantOrder := []int64{102, 103, 101}
	for i, want := range wantOrder {
		if got[i].ItemID != want {
			t.Errorf("position %d: item %d, want %d", i, got[i].ItemID, want)
		}
	}
}

func TestGetUserItemIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, item := range []int64{101, 103, 105} {
		if _, _, err := db.CreateInteraction(ctx, 4, item, time.Now().Unix()); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	seen, err := db.GetUserItemIDs(ctx, 4)
	if err != nil {
		t.Fatalf("GetUserItemIDs failed: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("got %d seen items, want 3", len(seen))
	}
	for _, item := range []int64{101, 103, 105} {
		if _, ok := seen[item]; !ok {
			t.Errorf("item %d missing from seen set", item)
		}
	}

	// Unknown user gets an empty set, not an error.
	seen, err = db.GetUserItemIDs(ctx, 999)
	if err != nil {
		t.Fatalf("GetUserItemIDs for unknown user failed: %v", err)
	}
	if len(seen) != 0 {
		t.Errorf("unknown user has %d seen items, want 0", len(seen))
	}
}

func TestGetAllInteractions_DeterministicOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Insert out of timestamp order.
	inserts := []struct {
		user, item, ts int64
	}{
		{2, 102, 1700000300},
		{1, 101, 1700000100},
		{3, 103, 1700000200},
		{4, 104, 1700000200}, // same timestamp as above, later id
	}
	for _, s := range inserts {
		if _, _, err := db.CreateInteraction(ctx, s.user, s.item, s.ts); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	got, err := db.GetAllInteractions(ctx)
	if err != nil {
		t.Fatalf("GetAllInteractions failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d interactions, want 4", len(got))
	}

	// Ascending timestamp, then ascending id for the tie.
	wantItems := []int64{101, 103, 104, 102}
	for i, want := range wantItems {
		if got[i].ItemID != want {
			t.Errorf("position %d: item %d, want %d", i, got[i].ItemID, want)
		}
	}
}

func TestGetPopularItemIDs_RankingAndTieBreak(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// 103: three users; 101 and 102: two users each (tie broken by id);
	// 105: one user.
	seed := []struct{ user, item int64 }{
		{1, 103}, {2, 103}, {3, 103},
		{1, 102}, {2, 102},
		{1, 101}, {3, 101},
		{2, 105},
	}
	for _, s := range seed {
		if _, _, err := db.CreateInteraction(ctx, s.user, s.item, time.Now().Unix()); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	got, err := db.GetPopularItemIDs(ctx, 10)
	if err != nil {
		t.Fatalf("GetPopularItemIDs failed: %v", err)
	}

	want := []int64{103, 101, 102, 105}
	if len(got) != len(want) {
		t.Fatalf("got %d ids %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: item %d, want %d", i, got[i], want[i])
		}
	}

	// Limit is honored.
	got, err = db.GetPopularItemIDs(ctx, 2)
	if err != nil {
		t.Fatalf("GetPopularItemIDs with limit failed: %v", err)
	}
	if len(got) != 2 || got[0] != 103 || got[1] != 101 {
		t.Errorf("limited ranking = %v, want [103 101]", got)
	}
}

func TestGetPopularItemIDs_Empty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.GetPopularItemIDs(ctx, 5)
	if err != nil {
		t.Fatalf("GetPopularItemIDs on empty table failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
