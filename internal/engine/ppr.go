// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package engine

import (
	"sort"

	"github.com/tomtom215/graphrec/internal/recommend"
)

// RecommendPPR approximates personalized PageRank with bounded random
// walks and returns up to n items with their visit-frequency scores,
// best first.
//
// Each of the walkBudget walks restarts at the user and alternates
// user -> item -> user steps for at most hopLimit hops, counting every
// item visit. An item's score is its share of all recorded visits, so
// scores sum to 1 across the full ranking. The user's own items are not
// filtered here; callers requesting n slots typically over-fetch to
// absorb that overlap.
//
// Walk sampling draws from adjacency lists sorted by id, so two engines
// holding the same graph and seed produce the same ranking.
func (e *Engine) RecommendPPR(userID, n, walkBudget, hopLimit int) []recommend.ScoredItem {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if n <= 0 || walkBudget <= 0 || hopLimit <= 0 {
		return nil
	}
	if len(e.userItems[userID]) == 0 {
		return nil
	}

	// Adjacency slices are materialized lazily and sorted so the seeded
	// rng always sees the same index space for the same graph.
	userAdj := make(map[int][]int)
	itemAdj := make(map[int][]int)
	itemsOf := func(u int) []int {
		if adj, ok := userAdj[u]; ok {
			return adj
		}
		adj := make([]int, 0, len(e.userItems[u]))
		for itemID := range e.userItems[u] {
			adj = append(adj, itemID)
		}
		sort.Ints(adj)
		userAdj[u] = adj
		return adj
	}
	usersOf := func(itemID int) []int {
		if adj, ok := itemAdj[itemID]; ok {
			return adj
		}
		adj := make([]int, 0, len(e.itemUsers[itemID]))
		for u := range e.itemUsers[itemID] {
			adj = append(adj, u)
		}
		sort.Ints(adj)
		itemAdj[itemID] = adj
		return adj
	}

	visits := make(map[int]int)
	total := 0

	e.rngMu.Lock()
	for walk := 0; walk < walkBudget; walk++ {
		current := userID
		for hop := 0; hop < hopLimit; hop++ {
			items := itemsOf(current)
			if len(items) == 0 {
				break
			}
			itemID := items[e.rng.Intn(len(items))]
			visits[itemID]++
			total++

			users := usersOf(itemID)
			if len(users) == 0 {
				break
			}
			current = users[e.rng.Intn(len(users))]
		}
	}
	e.rngMu.Unlock()

	if total == 0 {
		return nil
	}

	ranked := make([]recommend.ScoredItem, 0, len(visits))
	for itemID, count := range visits {
		ranked = append(ranked, recommend.ScoredItem{
			ID:    itemID,
			Score: float64(count) / float64(total),
		})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		return ranked[a].ID < ranked[b].ID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
