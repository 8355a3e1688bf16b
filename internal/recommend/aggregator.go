// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/metrics"
)

// CandidateSource provides fallback candidates from the store of record.
// It is implemented by the database layer.
type CandidateSource interface {
	// GetPopularItemIDs returns item ids ranked by interaction count,
	// ties broken by ascending id.
	GetPopularItemIDs(ctx context.Context, limit int) ([]int64, error)

	// GetCatalogItemIDs returns item ids in catalog order (ascending id).
	GetCatalogItemIDs(ctx context.Context, limit int) ([]int64, error)
}

// Aggregator merges graph-engine output with popularity and catalog
// fallbacks into a bounded, deduplicated, reason-tagged result.
type Aggregator struct {
	adapter *EngineAdapter
	source  CandidateSource
	config  *Config
	logger  zerolog.Logger
}

// NewAggregator creates an aggregator over the given engine adapter and
// fallback source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAggregator(adapter *EngineAdapter, source CandidateSource, cfg *Config, logger zerolog.Logger) *Aggregator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Aggregator{
		adapter: adapter,
		source:  source,
		config:  cfg,
		logger:  logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate produces up to k candidates for the user. Tiers run in fixed
// order and each later tier only fires on deficit:
//
//  1. Graph tier: the engine's BFS or PPR ranking, order preserved.
//  2. Popularity tier: most-interacted items, tagged "Global Trending".
//  3. Catalog tier: items in catalog order, tagged "New Arrival".
//
// Every tier filters the user's seen set and the running result, so no
// item appears twice and no seen item appears at all. Returning fewer
// than k items is a valid terminal state when the tiers are exhausted.
// Fallback tiers over-fetch by the configured margins plus the seen-set
// size so filtering rarely starves them.
func (a *Aggregator) Aggregate(ctx context.Context, userID int64, k int, algo string, seen map[int64]struct{}, prefGenres []int) ([]CandidateItem, error) {
	if !ValidAlgo(algo) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlgo, algo)
	}
	if k < 1 {
		k = a.config.DefaultK
	}

	result := make([]CandidateItem, 0, k)
	selected := make(map[int64]struct{}, k)

	take := func(id int64, reason string) bool {
		if _, ok := seen[id]; ok {
			return false
		}
		if _, ok := selected[id]; ok {
			return false
		}
		selected[id] = struct{}{}
		result = append(result, CandidateItem{ItemID: id, Reason: reason})
		return true
	}

	// Tier 1: the graph engine. Engine order is preserved verbatim;
	// scores only matter inside the engine's own ranking.
	var candidates []Candidate
	reason := ReasonGraphBFS
	if algo == AlgoPPR {
		candidates = a.adapter.RecommendPPR(int(userID), k+a.config.PPRExtra, a.config.PPRWalks, a.config.PPRHops)
		reason = ReasonPageRank
	} else {
		candidates = a.adapter.RecommendBFS(int(userID), k, prefGenres)
	}

	graphCount := 0
	for _, c := range candidates {
		if take(int64(c.ID), reason) {
			graphCount++
		}
		if len(result) >= k {
			break
		}
	}

	// Tier 2: global popularity.
	popularityCount := 0
	if len(result) < k {
		needed := k - len(result)
		limit := needed + len(seen) + a.config.PopularityMargin
		ids, err := a.source.GetPopularItemIDs(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("fetch popular items: %w", err)
		}
		for _, id := range ids {
			if take(id, ReasonTrending) {
				popularityCount++
			}
			if len(result) >= k {
				break
			}
		}
	}

	// Tier 3: catalog order.
	catalogCount := 0
	if len(result) < k {
		needed := k - len(result)
		limit := needed + len(seen) + a.config.CatalogMargin
		ids, err := a.source.GetCatalogItemIDs(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog items: %w", err)
		}
		for _, id := range ids {
			if take(id, ReasonNewArrival) {
				catalogCount++
			}
			if len(result) >= k {
				break
			}
		}
	}

	metrics.RecordRecommendationTiers(graphCount, popularityCount, catalogCount)

	a.logger.Debug().
		Int64("user_id", userID).
		Str("algo", algo).
		Int("k", k).
		Int("graph", graphCount).
		Int("popularity", popularityCount).
		Int("catalog", catalogCount).
		Msg("candidates aggregated")

	return result, nil
}
