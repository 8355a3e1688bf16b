// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/graphrec/internal/models"
	"github.com/tomtom215/graphrec/internal/validation"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to ActivityEvent.
const SchemaVersion = 1

// Action constants for NATS subjects and journal rows.
const (
	// ActionInteractionAdded indicates a user-item interaction was recorded.
	ActionInteractionAdded = "interaction_added"
	// ActionInteractionRemoved indicates a user-item interaction was deleted.
	ActionInteractionRemoved = "interaction_removed"
	// ActionPreferencesUpdated indicates a user's genre preferences changed.
	ActionPreferencesUpdated = "preferences_updated"
)

// ActivityEvent is the canonical wire format for mutation events.
//
// Schema versioning:
//   - SchemaVersion tracks the event format version
//   - Consumers should handle older schema versions for backward compatibility
//   - Version 1: initial schema with all current fields
type ActivityEvent struct {
	SchemaVersion int `json:"schema_version,omitempty"`

	// EventID doubles as the Nats-Msg-Id for broker-side deduplication
	// and as the journal's idempotency key.
	EventID string `json:"event_id" validate:"required,uuid4"`
	Action  string `json:"action" validate:"required,oneof=interaction_added interaction_removed preferences_updated"`
	UserID  int64  `json:"user_id" validate:"required,gt=0"`

	// ItemID is set for interaction actions and zero otherwise.
	ItemID int64 `json:"item_id,omitempty" validate:"gte=0"`

	// GenreIDs carries the new preference vector for preferences_updated.
	GenreIDs []int64 `json:"genre_ids,omitempty"`

	OccurredAt time.Time `json:"occurred_at" validate:"required"`
}

// NewActivityEvent creates an event with a unique ID, timestamp, and
// schema version.
func NewActivityEvent(action string, userID int64) *ActivityEvent {
	return &ActivityEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Action:        action,
		UserID:        userID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Validate checks required fields and action-specific constraints.
func (e *ActivityEvent) Validate() error {
	if err := validation.ValidateStruct(e); err != nil {
		return err
	}

	switch e.Action {
	case ActionInteractionAdded, ActionInteractionRemoved:
		if e.ItemID <= 0 {
			return fmt.Errorf("item_id is required for action %q", e.Action)
		}
	case ActionPreferencesUpdated:
		if e.ItemID != 0 {
			return fmt.Errorf("item_id must be zero for action %q", e.Action)
		}
	}

	return nil
}

// JournalEntry converts the event to its activity journal row.
// GenreIDs are feed-only detail and are not journaled.
func (e *ActivityEvent) JournalEntry() *models.ActivityEntry {
	return &models.ActivityEntry{
		EventID:    e.EventID,
		Action:     e.Action,
		UserID:     e.UserID,
		ItemID:     e.ItemID,
		OccurredAt: e.OccurredAt,
	}
}

// SubjectFor returns the NATS subject for an action under the given
// prefix. Example: activity.interaction_added
func SubjectFor(prefix, action string) string {
	return prefix + "." + action
}

// MarshalEvent validates and encodes an event for publishing.
func MarshalEvent(event *ActivityEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return data, nil
}

// UnmarshalEvent decodes an event payload. The caller is expected to
// Validate the result before acting on it.
func UnmarshalEvent(data []byte) (*ActivityEvent, error) {
	var event ActivityEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	if event.SchemaVersion == 0 {
		event.SchemaVersion = SchemaVersion
	}

	return &event, nil
}
