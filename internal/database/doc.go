// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

/*
Package database provides DuckDB-backed persistence for the recommendation
service.

DuckDB is the durable system of record: the in-memory recommendation graph
is a derived view that can always be rebuilt from the interactions table.
Every mutation lands here first; only after the row is durable does the
engine, the cache, or the event pipeline hear about it.

# Overview

The package owns six tables:

  - items: the media catalog, seeded on first start
  - interactions: (user, item) events, unique per pair, unix-second timestamps
  - user_preferences: per-user genre rows, replaced wholesale per write
  - profiles: auth subject UUID to integer user id mapping
  - graph_snapshots: at most one serialized graph blob
  - activity_log: append-only journal fed by the NATS consumer

# Connection Management

New() opens a single DuckDB database (file-backed, or in-memory when the
configured path is empty), applies connection pool limits, creates the
schema, runs versioned migrations, and checkpoints the WAL. Close()
checkpoints again so the next start never replays schema statements.

# Idempotency

The write paths that absorb retries and event redeliveries are idempotent:

  - CreateInteraction: check-then-insert keyed on (user_id, item_id)
  - AppendActivity: check-then-insert keyed on event_id
  - EnsureProfile: check-then-insert keyed on uuid
  - SeedCatalog: no-op against a non-empty catalog

Each check-then-insert holds a package-level mutex across the probe and
the insert so concurrent duplicates cannot both pass the probe.

# Determinism

Read paths that feed ranking are deterministically ordered:

  - GetPopularItemIDs: ORDER BY COUNT(*) DESC, item_id ASC
  - GetCatalogItemIDs: ORDER BY id ASC
  - GetAllInteractions: ORDER BY timestamp ASC, id ASC

Identical database state therefore always produces identical
recommendation output.

# Usage

	cfg := &config.DatabaseConfig{Path: "/data/graphrec.duckdb", MemoryLimitMB: 512}
	db, err := database.New(cfg)
	if err != nil {
	    return err
	}
	defer db.Close()

	row, created, err := db.CreateInteraction(ctx, 1, 101, time.Now().Unix())

# See Also

  - internal/recommend: startup reconciliation over GetAllInteractions
  - internal/engine: consumes snapshots stored here
  - internal/events: consumer writing the activity journal
*/
package database
