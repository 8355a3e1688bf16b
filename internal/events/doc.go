// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package events implements the activity event pipeline.
//
// Every successful mutation (interaction added or removed, preferences
// updated) is published as an ActivityEvent to an embedded NATS
// JetStream server. A single durable consumer journals each event into
// the DuckDB activity log and fans it out to the WebSocket hub. The
// stream's duplicate window plus the journal's event_id uniqueness make
// redeliveries harmless.
//
// The Pipeline type owns the component lifecycle: embedded server,
// stream provisioning, publisher, and consumer. When the pipeline is
// disabled by configuration, Publisher() returns a no-op implementation
// so callers never branch on the setting.
//
// Mutations are synchronous and complete before their event is
// published; the pipeline is a tail, not a source of truth. A lost
// event loses a feed entry and a journal row, never user data.
package events
