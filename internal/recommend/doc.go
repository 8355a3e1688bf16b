// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package recommend orchestrates recommendation serving on top of a
// pluggable graph engine.
//
// The package owns four concerns:
//
//   - EngineAdapter normalizes an engine value into a fixed capability
//     set via interface probing, so a partially implemented engine
//     degrades to no-ops instead of panics.
//   - Aggregator fills requests through a three-tier cascade: graph
//     results first, then global popularity, then catalog order, with
//     seen-item and duplicate filtering across tiers.
//   - Service wraps the cascade with response caching, catalog
//     hydration, and the synchronous mutation sequence of store write,
//     engine push, and cache invalidation.
//   - StateManager drives the engine state lifecycle: catalog seeding,
//     snapshot restore, store reconciliation, and snapshot persistence
//     on shutdown or demand.
//
// The package defines the engine contract (ScoredItem and the
// capability interfaces) but never imports a concrete engine; engines
// depend on this package, not the other way around.
package recommend
