// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package engine

import (
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// Config contains tuning parameters for the graph engine.
type Config struct {
	// GenreBias multiplies the BFS score of items whose genre matches one
	// of the requesting user's preferred genres. Must be >= 1; values
	// below 1 are replaced with the default.
	GenreBias float64

	// Seed seeds the random source used by PPR walks. Zero selects a
	// fixed default so repeated runs of the same binary rank alike.
	Seed int64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		GenreBias: 2.0,
		Seed:      42,
	}
}

// Engine is an in-memory weighted bipartite graph between users and items.
// Interactions form the edges, each stamped with the unix-seconds time of
// the first interaction. Items additionally carry a genre tag used to bias
// BFS traversal toward a user's preferred genres.
//
// All exported methods are safe for concurrent use. Mutations take the
// write lock; recommendations and counts take the read lock, so readers
// never observe a half-applied mutation.
type Engine struct {
	mu sync.RWMutex

	// userItems[userID][itemID] = unix seconds of the first interaction.
	userItems map[int]map[int]int64

	// itemUsers is the reverse adjacency, kept in lockstep with userItems.
	itemUsers map[int]map[int]struct{}

	// itemGenres[itemID] = genre id. An item tagged here counts as a
	// graph node even when no interaction edge touches it.
	itemGenres map[int]int

	config Config
	logger zerolog.Logger

	// rng drives PPR walks. math/rand is stateful, so walks serialize
	// on rngMu while the graph itself stays under the read lock.
	rng   *rand.Rand
	rngMu sync.Mutex
}

// New creates an empty engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) *Engine {
	if cfg.GenreBias < 1 {
		cfg.GenreBias = DefaultConfig().GenreBias
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = DefaultConfig().Seed
	}

	return &Engine{
		userItems:  make(map[int]map[int]int64),
		itemUsers:  make(map[int]map[int]struct{}),
		itemGenres: make(map[int]int),
		config:     cfg,
		logger:     logger.With().Str("component", "engine").Logger(),
		rng:        rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for walk sampling, not security
	}
}

// AddInteraction records a user-item edge. Re-adding an existing edge
// keeps the original timestamp, so replays and reconciliation passes are
// idempotent.
func (e *Engine) AddInteraction(userID, itemID int, ts int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := e.userItems[userID]
	if items == nil {
		items = make(map[int]int64)
		e.userItems[userID] = items
	}
	if _, ok := items[itemID]; ok {
		return
	}
	items[itemID] = ts

	users := e.itemUsers[itemID]
	if users == nil {
		users = make(map[int]struct{})
		e.itemUsers[itemID] = users
	}
	users[userID] = struct{}{}
}

// RemoveInteraction removes a user-item edge if present. Removing an
// absent edge is a no-op. Users and untagged items with no remaining
// edges drop out of the graph.
func (e *Engine) RemoveInteraction(userID, itemID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, ok := e.userItems[userID]
	if !ok {
		return
	}
	if _, ok := items[itemID]; !ok {
		return
	}
	delete(items, itemID)
	if len(items) == 0 {
		delete(e.userItems, userID)
	}

	users := e.itemUsers[itemID]
	delete(users, userID)
	if len(users) == 0 {
		delete(e.itemUsers, itemID)
	}
}

// SetItemGenre tags an item with a genre id, registering the item as a
// graph node. Re-tagging replaces the previous genre.
func (e *Engine) SetItemGenre(itemID, genreID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.itemGenres[itemID] = genreID
}

// ItemCount returns the number of distinct item nodes, counting both
// genre-tagged items and items reachable through interaction edges.
func (e *Engine) ItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.itemCountLocked()
}

// UserCount returns the number of users with at least one edge.
func (e *Engine) UserCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.userItems)
}

// EdgeCount returns the number of interaction edges.
func (e *Engine) EdgeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.edgeCountLocked()
}

// edgeCountLocked counts edges. Callers must hold at least the read lock.
func (e *Engine) edgeCountLocked() int {
	count := 0
	for _, items := range e.userItems {
		count += len(items)
	}
	return count
}
