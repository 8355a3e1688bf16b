// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/metrics"
	"github.com/tomtom215/graphrec/internal/models"
)

// ItemCatalog provides the read access the service needs for hydration
// and per-user request context. It is implemented by the database layer.
type ItemCatalog interface {
	// GetItemsByIDs returns catalog rows for ids, preserving input order
	// and dropping unknown ids.
	GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error)

	// GetUserItemIDs returns the user's seen set.
	GetUserItemIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)

	// GetPreferenceGenreIDs returns the user's preferred genre ids.
	GetPreferenceGenreIDs(ctx context.Context, userID int64) ([]int, error)
}

// MutationStore persists interaction and preference writes. It is
// implemented by the database layer.
type MutationStore interface {
	// CreateInteraction records an interaction idempotently on the
	// (user, item) pair and reports whether a new row was created.
	CreateInteraction(ctx context.Context, userID, itemID, timestamp int64) (*models.Interaction, bool, error)

	// DeleteInteraction removes an interaction and reports whether a
	// row existed.
	DeleteInteraction(ctx context.Context, userID, itemID int64) (bool, error)

	// ReplacePreferences replaces the user's full preference set.
	ReplacePreferences(ctx context.Context, userID int64, genreIDs []int) error
}

// ResponseCache is the cache surface the service consumes. The cache is
// an optimization layer: implementations report misses and swallow write
// failures rather than surfacing backend errors.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, payload []byte)
	InvalidateUser(ctx context.Context, userID int64) int
}

// CacheKey builds the response-cache key for a recommendation request.
// The schema is fixed; invalidation relies on the "rec:{user}:" prefix.
func CacheKey(userID int64, algo string, k int) string {
	return fmt.Sprintf("rec:%d:%s:%d", userID, algo, k)
}

// Service orchestrates recommendation reads and interaction mutations:
// cache probe, tiered aggregation, catalog hydration, cache write-back,
// and the synchronous mutation sequence of store write, engine push, and
// cache invalidation.
type Service struct {
	aggregator *Aggregator
	adapter    *EngineAdapter
	catalog    ItemCatalog
	store      MutationStore
	cache      ResponseCache
	config     *Config
	logger     zerolog.Logger
}

// NewService wires the orchestration layer. All collaborators are
// required; pass the memory cache backend rather than nil when running
// without a cache store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(aggregator *Aggregator, adapter *EngineAdapter, catalog ItemCatalog, store MutationStore, cache ResponseCache, cfg *Config, logger zerolog.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Service{
		aggregator: aggregator,
		adapter:    adapter,
		catalog:    catalog,
		store:      store,
		cache:      cache,
		config:     cfg,
		logger:     logger.With().Str("component", "recommend_service").Logger(),
	}
}

// Recommend serves one recommendation request. BFS requests probe the
// response cache first and write back on miss; PPR requests bypass the
// cache in both directions. rawK is clamped into the configured range
// before it reaches the cache key or the aggregator.
func (s *Service) Recommend(ctx context.Context, userID int64, rawK int, algo string) (*models.RecommendationResponse, error) {
	start := time.Now()

	if !ValidAlgo(algo) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlgo, algo)
	}
	k := s.config.ClampK(rawK)
	key := CacheKey(userID, algo, k)

	if algo == AlgoBFS {
		if payload, hit := s.cache.Get(ctx, key); hit {
			var items []models.RecommendedItem
			if err := json.Unmarshal(payload, &items); err == nil {
				elapsed := time.Since(start)
				metrics.RecordRecommendation(algo, "cache", elapsed)
				return &models.RecommendationResponse{
					UserID:          userID,
					Recommendations: items,
					LatencyMS:       elapsed.Seconds() * 1000,
					Source:          models.SourceCache,
				}, nil
			}
			// An undecodable entry is stale format; serve a fresh
			// computation and let the write-back replace it.
			s.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		}
	}

	seen, err := s.catalog.GetUserItemIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch seen items: %w", err)
	}
	prefGenres, err := s.catalog.GetPreferenceGenreIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch preferences: %w", err)
	}

	candidates, err := s.aggregator.Aggregate(ctx, userID, k, algo, seen, prefGenres)
	if err != nil {
		return nil, err
	}

	items, err := s.hydrate(ctx, candidates)
	if err != nil {
		return nil, err
	}

	// Only non-empty BFS results are cached. Empty results usually mean
	// a cold store; caching them would pin the cold answer for the TTL.
	if algo == AlgoBFS && len(items) > 0 {
		if payload, merr := json.Marshal(items); merr == nil {
			s.cache.Put(ctx, key, payload)
		}
	}

	elapsed := time.Since(start)
	metrics.RecordRecommendation(algo, "computed", elapsed)
	return &models.RecommendationResponse{
		UserID:          userID,
		Recommendations: items,
		LatencyMS:       elapsed.Seconds() * 1000,
		Source:          models.SourceHybrid,
	}, nil
}

// hydrate joins candidates with catalog metadata, preserving candidate
// order. Items missing from the catalog keep their slot with a
// placeholder title rather than failing the request.
func (s *Service) hydrate(ctx context.Context, candidates []CandidateItem) ([]models.RecommendedItem, error) {
	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ItemID
	}

	rows, err := s.catalog.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate items: %w", err)
	}
	byID := make(map[int64]models.Item, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	items := make([]models.RecommendedItem, 0, len(candidates))
	for _, c := range candidates {
		item := models.RecommendedItem{
			ID:       c.ItemID,
			Title:    fmt.Sprintf("Item %d", c.ItemID),
			Category: "Unknown",
			Reason:   c.Reason,
		}
		if row, ok := byID[c.ItemID]; ok {
			item.Title = row.Title
			item.Category = row.Category
		}
		items = append(items, item)
	}
	return items, nil
}

// AddInteraction runs the synchronous mutation sequence for a new
// interaction: store write, engine push, cache invalidation. It reports
// whether a new row was created; re-adding an existing pair is a no-op
// that still invalidates the cache.
func (s *Service) AddInteraction(ctx context.Context, userID, itemID int64) (bool, error) {
	row, created, err := s.store.CreateInteraction(ctx, userID, itemID, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("persist interaction: %w", err)
	}

	// The stored timestamp wins so duplicate submissions replay the
	// original edge.
	s.adapter.AddInteraction(int(userID), int(itemID), row.Timestamp)
	s.invalidate(ctx, userID)
	return created, nil
}

// RemoveInteraction runs the synchronous mutation sequence for an
// interaction removal. Removing an absent pair reports false without
// error.
func (s *Service) RemoveInteraction(ctx context.Context, userID, itemID int64) (bool, error) {
	removed, err := s.store.DeleteInteraction(ctx, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("delete interaction: %w", err)
	}

	s.adapter.RemoveInteraction(int(userID), int(itemID))
	s.invalidate(ctx, userID)
	return removed, nil
}

// SetPreferences replaces the user's preference set wholesale and
// invalidates their cached recommendations. Unknown genre names map to
// the Unknown bucket rather than erroring. Returns the stored genre ids.
func (s *Service) SetPreferences(ctx context.Context, userID int64, genreNames []string) ([]int, error) {
	genreIDs := models.GenreIDs(genreNames)
	if err := s.store.ReplacePreferences(ctx, userID, genreIDs); err != nil {
		return nil, fmt.Errorf("persist preferences: %w", err)
	}

	s.invalidate(ctx, userID)
	return genreIDs, nil
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	removed := s.cache.InvalidateUser(ctx, userID)
	if removed > 0 {
		s.logger.Debug().Int64("user_id", userID).Int("entries", removed).Msg("cache invalidated")
	}
}
