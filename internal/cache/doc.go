// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package cache provides the TTL'd response cache for hydrated
// recommendation lists.
//
// Two backends implement the Store contract: Badger for durable
// single-node deployments and an in-process map for tests and
// cache-less setups. Keys follow the fixed schema rec:{user}:{algo}:{k}
// and invalidation is a coarse per-user prefix delete.
//
// The cache is strictly an optimization layer. Backend failures
// surface as misses and dropped writes, never as request errors, and a
// circuit breaker in front of the Badger backend stops a failing disk
// from adding latency to every request.
package cache
