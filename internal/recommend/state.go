// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/metrics"
	"github.com/tomtom215/graphrec/internal/models"
)

// Snapshot triggers label the snapshot_saves_total metric.
const (
	snapshotTriggerInitial  = "initial"
	snapshotTriggerShutdown = "shutdown"
	snapshotTriggerManual   = "manual"
)

// StateStore is the persistence surface the state manager needs. It is
// implemented by the database layer.
type StateStore interface {
	// SeedCatalog inserts the built-in catalog if the items table is empty.
	SeedCatalog(ctx context.Context) error

	// ListItems returns the full catalog ordered by id.
	ListItems(ctx context.Context) ([]models.Item, error)

	// GetAllInteractions returns every stored interaction ordered by id.
	GetAllInteractions(ctx context.Context) ([]models.Interaction, error)

	// GetLatestSnapshot returns the stored snapshot blob, or nil data
	// when none exists.
	GetLatestSnapshot(ctx context.Context) ([]byte, time.Time, error)

	// ReplaceSnapshot stores data as the single authoritative snapshot.
	ReplaceSnapshot(ctx context.Context, data []byte) error
}

// StateManager owns the engine state lifecycle. Startup runs the fixed
// sequence: seed the catalog, attempt a snapshot restore, reconcile the
// engine against the store, and take an initial snapshot when nothing
// was restored. Shutdown persists a final snapshot unless the graph is
// empty.
//
// The relational store is authoritative. The snapshot only shortcuts
// cold starts, so a missing, corrupt, or empty snapshot is never fatal;
// reconciliation replays catalog genres and interactions from the store
// unconditionally, even after a successful restore.
type StateManager struct {
	adapter *EngineAdapter
	store   StateStore
	path    string
	logger  zerolog.Logger
}

// NewStateManager prepares the on-disk scratch location for snapshot
// exchange. dataDir is created if absent.
func NewStateManager(adapter *EngineAdapter, store StateStore, dataDir, snapshotFile string, logger zerolog.Logger) (*StateManager, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &StateManager{
		adapter: adapter,
		store:   store,
		path:    filepath.Join(dataDir, snapshotFile),
		logger:  logger.With().Str("component", "state_manager").Logger(),
	}, nil
}

// Startup brings the engine to a serving state. Store errors are fatal;
// snapshot problems are not.
func (m *StateManager) Startup(ctx context.Context) error {
	if err := m.store.SeedCatalog(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	loaded, err := m.tryLoadSnapshot(ctx)
	if err != nil {
		return err
	}

	if err := m.reconcile(ctx); err != nil {
		return err
	}

	count := m.adapter.ItemCount()
	metrics.EngineItems.Set(float64(count))

	// First boot (or a discarded snapshot) leaves nothing in the
	// snapshot table; persist one now so the next start restores fast.
	// Failure here only costs the shortcut.
	if !loaded && count > 0 {
		if serr := m.save(ctx, snapshotTriggerInitial); serr != nil && !errors.Is(serr, ErrCapabilityAbsent) {
			m.logger.Warn().Err(serr).Msg("initial snapshot failed, continuing without one")
		}
	}

	m.logger.Info().
		Bool("snapshot_restored", loaded).
		Int("graph_items", count).
		Msg("engine state ready")
	return nil
}

// Shutdown persists the final snapshot. An empty graph is skipped so a
// crash-looping service cannot overwrite a good snapshot with nothing.
func (m *StateManager) Shutdown(ctx context.Context) error {
	if m.adapter.ItemCount() == 0 {
		metrics.RecordSnapshotSkipped(snapshotTriggerShutdown)
		m.logger.Info().Msg("graph empty, leaving stored snapshot untouched")
		return nil
	}
	if err := m.save(ctx, snapshotTriggerShutdown); err != nil {
		if errors.Is(err, ErrCapabilityAbsent) {
			return nil
		}
		return err
	}
	return nil
}

// SaveNow persists a snapshot on demand and returns the item count it
// captured. Returns ErrEmptyGraph when there is nothing to save and
// ErrCapabilityAbsent when the engine cannot serialize itself.
func (m *StateManager) SaveNow(ctx context.Context) (int, error) {
	count := m.adapter.ItemCount()
	if count == 0 {
		metrics.RecordSnapshotSkipped(snapshotTriggerManual)
		return 0, ErrEmptyGraph
	}
	if err := m.save(ctx, snapshotTriggerManual); err != nil {
		return 0, err
	}
	return count, nil
}

// tryLoadSnapshot restores the engine from the stored snapshot when one
// exists and decodes cleanly. Only store access errors propagate.
func (m *StateManager) tryLoadSnapshot(ctx context.Context) (bool, error) {
	data, savedAt, err := m.store.GetLatestSnapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch snapshot: %w", err)
	}
	if data == nil {
		m.logger.Debug().Msg("no stored snapshot, cold start")
		return false, nil
	}

	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		m.logger.Warn().Err(err).Msg("cannot stage snapshot file, rebuilding from store")
		return false, nil
	}
	if err := m.adapter.LoadModel(m.path); err != nil {
		if errors.Is(err, ErrCapabilityAbsent) {
			m.logger.Debug().Msg("engine has no persistence support, rebuilding from store")
			return false, nil
		}
		m.logger.Warn().Err(err).Time("saved_at", savedAt).Msg("discarding unreadable snapshot, rebuilding from store")
		return false, nil
	}
	if m.adapter.ItemCount() == 0 {
		m.logger.Warn().Time("saved_at", savedAt).Msg("discarding empty snapshot, rebuilding from store")
		return false, nil
	}

	m.logger.Info().Time("saved_at", savedAt).Int("bytes", len(data)).Msg("snapshot restored")
	return true, nil
}

// reconcile replays catalog genre tags and stored interactions into the
// engine. It runs on every start: when a snapshot was restored it
// converges the engine onto writes the snapshot missed, and on a cold
// start it rebuilds the graph outright. Engine mutations are idempotent,
// so replaying restored edges is harmless.
func (m *StateManager) reconcile(ctx context.Context) error {
	start := time.Now()

	items, err := m.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list items for reconciliation: %w", err)
	}
	for i := range items {
		m.adapter.SetItemGenre(int(items[i].ID), models.GenreID(items[i].Category))
	}

	rows, err := m.store.GetAllInteractions(ctx)
	if err != nil {
		return fmt.Errorf("list interactions for reconciliation: %w", err)
	}
	for i := range rows {
		m.adapter.AddInteraction(int(rows[i].UserID), int(rows[i].ItemID), rows[i].Timestamp)
	}

	elapsed := time.Since(start)
	metrics.EngineReconciliationDuration.Observe(elapsed.Seconds())
	m.logger.Info().
		Int("items", len(items)).
		Int("interactions", len(rows)).
		Dur("took", elapsed).
		Msg("engine reconciled against store")
	return nil
}

// save serializes the engine to the scratch file and stores the bytes
// as the authoritative snapshot. Returns ErrCapabilityAbsent unwrapped
// so callers can treat it as a skip.
func (m *StateManager) save(ctx context.Context, trigger string) error {
	start := time.Now()

	if err := m.adapter.SaveModel(m.path); err != nil {
		if errors.Is(err, ErrCapabilityAbsent) {
			metrics.RecordSnapshotSkipped(trigger)
			return err
		}
		metrics.RecordSnapshotSave(trigger, time.Since(start), err)
		return fmt.Errorf("serialize engine state: %w", err)
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		metrics.RecordSnapshotSave(trigger, time.Since(start), err)
		return fmt.Errorf("read snapshot file: %w", err)
	}
	if err := m.store.ReplaceSnapshot(ctx, data); err != nil {
		metrics.RecordSnapshotSave(trigger, time.Since(start), err)
		return fmt.Errorf("persist snapshot: %w", err)
	}

	elapsed := time.Since(start)
	metrics.RecordSnapshotSave(trigger, elapsed, nil)
	m.logger.Info().
		Str("trigger", trigger).
		Int("bytes", len(data)).
		Dur("took", elapsed).
		Msg("snapshot persisted")
	return nil
}
