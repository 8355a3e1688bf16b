// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

// Note: This package has no dependency on the concrete engine implementation.
// The adapter in adapter.go probes an opaque engine value for capabilities,
// so any recommender exposing the right method set can sit behind it.

// Algorithm identifiers accepted by the recommendation surface.
const (
	// AlgoBFS selects the weighted breadth-first graph traversal. BFS
	// results are the only ones served from the response cache.
	AlgoBFS = "bfs"

	// AlgoPPR selects the personalized-PageRank approximation. PPR
	// bypasses the response cache in both directions.
	AlgoPPR = "ppr"
)

// Reason labels recorded on aggregated candidates. The label names the
// tier that supplied the item and is never overwritten once assigned.
const (
	ReasonGraphBFS   = "Graph BFS"
	ReasonPageRank   = "PageRank"
	ReasonTrending   = "Global Trending"
	ReasonNewArrival = "New Arrival"
)

// ScoredItem pairs an item id with an engine-assigned relevance score.
// Engines that rank candidates return these; engines that only order
// them return bare ids. The adapter normalizes both shapes.
type ScoredItem struct {
	ID    int
	Score float64
}

// Candidate is the normalized engine output. Scored reports whether the
// engine attached a meaningful score; unscored candidates carry their
// rank implicitly in slice order.
type Candidate struct {
	ID     int
	Score  float64
	Scored bool
}

// CandidateItem is one aggregated recommendation before hydration with
// catalog metadata. Within a single aggregated result every ItemID is
// unique and absent from the requesting user's seen set.
type CandidateItem struct {
	ItemID int64
	Reason string
}

// ValidAlgo reports whether s names a supported algorithm.
func ValidAlgo(s string) bool {
	return s == AlgoBFS || s == AlgoPPR
}
