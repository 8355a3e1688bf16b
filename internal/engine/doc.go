// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package engine implements the in-process graph recommender.
//
// The engine keeps a bipartite user-item graph in memory: interaction
// edges stamped with their first-interaction time, plus a genre tag per
// item. Two traversals rank candidates over it:
//
//   - Recommend: two-hop weighted BFS through co-interaction
//     neighborhoods, biased toward the user's preferred genres.
//   - RecommendPPR: personalized-PageRank approximation via bounded
//     random walks restarting at the user.
//
// # Persistence
//
// SaveModel and LoadModel serialize the full graph as a gob payload,
// gzip compressed, with a SHA-256 checksum in the header. The format is
// private to this package; the rest of the service treats snapshot
// bytes as opaque and only decides when to load and save them.
//
// # Consumption
//
// Callers outside this package reach the engine through the capability
// adapter in internal/recommend, which probes for the method set this
// package implements. The engine itself has no knowledge of HTTP,
// storage, or caching.
//
// # Thread Safety
//
// One RWMutex guards the graph. Mutations serialize on the write lock;
// traversals and counts share the read lock. PPR walks additionally
// serialize on an internal mutex because the seeded random source is
// stateful.
package engine
