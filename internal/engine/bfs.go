// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package engine

import "sort"

// Recommend runs a two-hop weighted BFS from the user and returns up to k
// item ids, best first.
//
// Hop one collects the users who co-interacted with any of the requesting
// user's items, weighted by the number of shared items. Hop two accumulates
// those neighbors' other items, each scored by the sum of its neighbors'
// weights. Items whose genre matches one of prefGenres get their score
// multiplied by the configured genre bias. The user's own items are never
// returned.
//
// A user with no interactions has no neighborhood, so the result is empty
// and the caller's fallback tiers take over. Ties are broken by ascending
// item id to keep rankings stable across calls.
func (e *Engine) Recommend(userID, k int, prefGenres []int) []int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if k <= 0 {
		return nil
	}
	seen := e.userItems[userID]
	if len(seen) == 0 {
		return nil
	}

	// Genre 0 is the Unknown bucket; preferring it would bias toward
	// untagged items, so it never participates.
	pref := make(map[int]struct{}, len(prefGenres))
	for _, g := range prefGenres {
		if g > 0 {
			pref[g] = struct{}{}
		}
	}

	// Hop 1: co-interacting users, weighted by shared-item count.
	neighborWeight := make(map[int]float64)
	for itemID := range seen {
		for other := range e.itemUsers[itemID] {
			if other == userID {
				continue
			}
			neighborWeight[other]++
		}
	}
	if len(neighborWeight) == 0 {
		return nil
	}

	// Hop 2: neighbors' items, excluding the user's own.
	scores := make(map[int]float64)
	for neighbor, weight := range neighborWeight {
		for itemID := range e.userItems[neighbor] {
			if _, ok := seen[itemID]; ok {
				continue
			}
			scores[itemID] += weight
		}
	}

	if len(pref) > 0 {
		for itemID := range scores {
			if genre, tagged := e.itemGenres[itemID]; tagged {
				if _, want := pref[genre]; want {
					scores[itemID] *= e.config.GenreBias
				}
			}
		}
	}

	return topItemIDs(scores, k)
}

// topItemIDs ranks scored items by score descending, ascending id on ties,
// and returns at most k ids.
func topItemIDs(scores map[int]float64, k int) []int {
	if len(scores) == 0 {
		return nil
	}

	type ranked struct {
		id    int
		score float64
	}
	items := make([]ranked, 0, len(scores))
	for id, score := range scores {
		items = append(items, ranked{id, score})
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].score != items[b].score {
			return items[a].score > items[b].score
		}
		return items[a].id < items[b].id
	})

	if len(items) > k {
		items = items[:k]
	}
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.id
	}
	return ids
}
