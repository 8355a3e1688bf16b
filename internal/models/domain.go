// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package models defines the domain entities and HTTP wire types shared
// across the GraphRec service. Types here are plain data carriers; behavior
// lives in the packages that own the data.
package models

import (
	"time"
)

// Item is a catalog entry users interact with and receive as a
// recommendation.
type Item struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// Interaction is one durable (user, item) event. Timestamp is unix seconds.
// The (UserID, ItemID) pair is unique; repeated creates are idempotent.
type Interaction struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ItemID    int64 `json:"item_id"`
	Timestamp int64 `json:"timestamp"`
}

// Profile maps an authentication subject (UUID issued by the auth provider)
// to the integer user id used throughout the graph and the store.
type Profile struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityEntry is one row of the append-only activity journal fed by the
// event pipeline. ItemID is zero for actions without an item (preference
// updates).
type ActivityEntry struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	UserID     int64     `json:"user_id"`
	ItemID     int64     `json:"item_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
