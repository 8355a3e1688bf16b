// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/metrics"
)

// Capability interfaces. Each names exactly one optional engine method;
// an engine exposes a capability by implementing the method with this
// exact signature.

// InteractionAdder records a user-item edge. Re-adding an existing edge
// must be a no-op from the caller's point of view.
type InteractionAdder interface {
	AddInteraction(userID, itemID int, ts int64)
}

// InteractionRemover removes a user-item edge if present.
type InteractionRemover interface {
	RemoveInteraction(userID, itemID int)
}

// GenreTagger associates an item with a genre for bias weighting.
type GenreTagger interface {
	SetItemGenre(itemID, genreID int)
}

// BFSRecommender ranks candidates by weighted graph traversal. The
// returned ids are ordered best first.
type BFSRecommender interface {
	Recommend(userID, k int, prefGenres []int) []int
}

// PPRRecommender ranks candidates by personalized-PageRank approximation.
type PPRRecommender interface {
	RecommendPPR(userID, n, walkBudget, hopLimit int) []ScoredItem
}

// ModelLoader replaces engine state from a serialized snapshot. It must
// error on corruption rather than load partial state.
type ModelLoader interface {
	LoadModel(path string) error
}

// ModelSaver serializes the full engine state.
type ModelSaver interface {
	SaveModel(path string) error
}

// ItemCounter reports the number of item nodes, used as the post-load
// validity signal.
type ItemCounter interface {
	ItemCount() int
}

// Capabilities holds the resolved capability set for one engine value.
// Nil fields mean the engine does not implement that capability.
type Capabilities struct {
	Adder   InteractionAdder
	Remover InteractionRemover
	Tagger  GenreTagger
	BFS     BFSRecommender
	PPR     PPRRecommender
	Loader  ModelLoader
	Saver   ModelSaver
	Counter ItemCounter
}

// EngineAdapter is the sole gateway between the orchestration layer and
// the graph engine. Capabilities are probed once at construction; absent
// capabilities degrade to no-ops, empty results, skips, or zero rather
// than errors, so a partial engine still serves through the fallback
// tiers.
type EngineAdapter struct {
	caps   Capabilities
	logger zerolog.Logger
}

// NewEngineAdapter probes engine for the capability set and returns an
// adapter over whatever subset it found. A nil or capability-free engine
// yields a working adapter where every call is a safe no-op.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngineAdapter(engine any, logger zerolog.Logger) *EngineAdapter {
	a := &EngineAdapter{
		logger: logger.With().Str("component", "engine_adapter").Logger(),
	}

	if v, ok := engine.(InteractionAdder); ok {
		a.caps.Adder = v
	}
	if v, ok := engine.(InteractionRemover); ok {
		a.caps.Remover = v
	}
	if v, ok := engine.(GenreTagger); ok {
		a.caps.Tagger = v
	}
	if v, ok := engine.(BFSRecommender); ok {
		a.caps.BFS = v
	}
	if v, ok := engine.(PPRRecommender); ok {
		a.caps.PPR = v
	}
	if v, ok := engine.(ModelLoader); ok {
		a.caps.Loader = v
	}
	if v, ok := engine.(ModelSaver); ok {
		a.caps.Saver = v
	}
	if v, ok := engine.(ItemCounter); ok {
		a.caps.Counter = v
	}

	a.logger.Info().
		Bool("add", a.caps.Adder != nil).
		Bool("remove", a.caps.Remover != nil).
		Bool("tag", a.caps.Tagger != nil).
		Bool("bfs", a.caps.BFS != nil).
		Bool("ppr", a.caps.PPR != nil).
		Bool("load", a.caps.Loader != nil).
		Bool("save", a.caps.Saver != nil).
		Bool("count", a.caps.Counter != nil).
		Msg("engine capabilities resolved")

	return a
}

// AddInteraction pushes an interaction edge into the engine.
func (a *EngineAdapter) AddInteraction(userID, itemID int, ts int64) {
	if a.caps.Adder == nil {
		return
	}
	a.caps.Adder.AddInteraction(userID, itemID, ts)
	metrics.RecordEngineMutation("add_interaction")
}

// RemoveInteraction removes an interaction edge from the engine.
func (a *EngineAdapter) RemoveInteraction(userID, itemID int) {
	if a.caps.Remover == nil {
		return
	}
	a.caps.Remover.RemoveInteraction(userID, itemID)
	metrics.RecordEngineMutation("remove_interaction")
}

// SetItemGenre tags an item with a genre in the engine.
func (a *EngineAdapter) SetItemGenre(itemID, genreID int) {
	if a.caps.Tagger == nil {
		return
	}
	a.caps.Tagger.SetItemGenre(itemID, genreID)
	metrics.RecordEngineMutation("set_item_genre")
}

// RecommendBFS returns normalized BFS candidates in engine order. An
// absent capability yields zero candidates.
func (a *EngineAdapter) RecommendBFS(userID, k int, prefGenres []int) []Candidate {
	if a.caps.BFS == nil {
		return nil
	}
	ids := a.caps.BFS.Recommend(userID, k, prefGenres)
	candidates := make([]Candidate, len(ids))
	for i, id := range ids {
		candidates[i] = Candidate{ID: id}
	}
	return candidates
}

// RecommendPPR returns normalized PPR candidates in engine order. An
// absent capability yields zero candidates.
func (a *EngineAdapter) RecommendPPR(userID, n, walkBudget, hopLimit int) []Candidate {
	if a.caps.PPR == nil {
		return nil
	}
	scored := a.caps.PPR.RecommendPPR(userID, n, walkBudget, hopLimit)
	candidates := make([]Candidate, len(scored))
	for i, s := range scored {
		candidates[i] = Candidate{ID: s.ID, Score: s.Score, Scored: true}
	}
	return candidates
}

// LoadModel replaces engine state from the snapshot at path. Returns
// ErrCapabilityAbsent when the engine cannot load snapshots.
func (a *EngineAdapter) LoadModel(path string) error {
	if a.caps.Loader == nil {
		return ErrCapabilityAbsent
	}
	return a.caps.Loader.LoadModel(path)
}

// SaveModel serializes engine state to path. Returns ErrCapabilityAbsent
// when the engine cannot save snapshots.
func (a *EngineAdapter) SaveModel(path string) error {
	if a.caps.Saver == nil {
		return ErrCapabilityAbsent
	}
	return a.caps.Saver.SaveModel(path)
}

// ItemCount reports the engine's item node count, or zero when the
// engine cannot report one.
func (a *EngineAdapter) ItemCount() int {
	if a.caps.Counter == nil {
		return 0
	}
	return a.caps.Counter.ItemCount()
}

// Capabilities returns the resolved capability set.
func (a *EngineAdapter) Capabilities() Capabilities {
	return a.caps
}
