// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package api provides the HTTP surface: Chi routing, request decoding and
// validation, and the handlers for recommendations, interactions,
// preferences, catalog, auth, admin, and the live activity WebSocket.
//
// Handlers depend on small interfaces (RecommendService, Store,
// SnapshotSaver) rather than concrete types so they can be exercised with
// httptest and in-memory fakes. Mutating routes run behind auth.RequireAuth
// and enforce ownership before touching the store, the engine, or the
// cache; admin routes additionally pass through the Casbin role check.
package api
