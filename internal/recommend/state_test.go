// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package recommend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/models"
)

// recordingEngine is a scriptable engine for lifecycle tests. Items
// become known through mutations or a successful load, mirroring how a
// real engine's item count behaves.
type recordingEngine struct {
	known     map[int]struct{}
	tags      [][2]int
	adds      []edgeCall
	loadErr   error
	saveErr   error
	saveData  []byte
	loadItems int
	loads     []string
	saves     []string
}

func newRecordingEngine() *recordingEngine {
	return &recordingEngine{
		known:    make(map[int]struct{}),
		saveData: []byte("snapshot-bytes"),
	}
}

func (e *recordingEngine) AddInteraction(userID, itemID int, ts int64) {
	e.adds = append(e.adds, edgeCall{userID, itemID, ts})
	e.known[itemID] = struct{}{}
}

func (e *recordingEngine) SetItemGenre(itemID, genreID int) {
	e.tags = append(e.tags, [2]int{itemID, genreID})
	e.known[itemID] = struct{}{}
}

func (e *recordingEngine) ItemCount() int { return len(e.known) }

func (e *recordingEngine) LoadModel(path string) error {
	e.loads = append(e.loads, path)
	if e.loadErr != nil {
		return e.loadErr
	}
	for i := 0; i < e.loadItems; i++ {
		e.known[9000+i] = struct{}{}
	}
	return nil
}

func (e *recordingEngine) SaveModel(path string) error {
	e.saves = append(e.saves, path)
	if e.saveErr != nil {
		return e.saveErr
	}
	return os.WriteFile(path, e.saveData, 0o600)
}

// graphOnlyEngine mutates but has no persistence or count capability.
type graphOnlyEngine struct {
	adds []edgeCall
	tags [][2]int
}

func (e *graphOnlyEngine) AddInteraction(userID, itemID int, ts int64) {
	e.adds = append(e.adds, edgeCall{userID, itemID, ts})
}

func (e *graphOnlyEngine) SetItemGenre(itemID, genreID int) {
	e.tags = append(e.tags, [2]int{itemID, genreID})
}

// memStateStore is an in-memory StateStore. Like the database layer it
// rejects empty snapshot blobs.
type memStateStore struct {
	items        []models.Item
	interactions []models.Interaction
	snapshot     []byte
	snapshotAt   time.Time
	seedCalls    int
	seedErr      error
	fetchErr     error
	replaceErr   error
	replaced     int
}

func (s *memStateStore) SeedCatalog(_ context.Context) error {
	s.seedCalls++
	return s.seedErr
}

func (s *memStateStore) ListItems(_ context.Context) ([]models.Item, error) {
	return s.items, nil
}

func (s *memStateStore) GetAllInteractions(_ context.Context) ([]models.Interaction, error) {
	return s.interactions, nil
}

func (s *memStateStore) GetLatestSnapshot(_ context.Context) ([]byte, time.Time, error) {
	if s.fetchErr != nil {
		return nil, time.Time{}, s.fetchErr
	}
	return s.snapshot, s.snapshotAt, nil
}

func (s *memStateStore) ReplaceSnapshot(_ context.Context, data []byte) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	if len(data) == 0 {
		return errors.New("snapshot data must not be empty")
	}
	s.replaced++
	s.snapshot = append([]byte(nil), data...)
	return nil
}

func newPopulatedStateStore() *memStateStore {
	return &memStateStore{
		items: []models.Item{
			{ID: 101, Title: "The Matrix", Category: "Sci-Fi"},
			{ID: 103, Title: "The Godfather", Category: "Crime"},
			{ID: 999, Title: "Uncatalogued", Category: "Jazz"},
		},
		interactions: []models.Interaction{
			{ID: 1, UserID: 1, ItemID: 101, Timestamp: 10},
			{ID: 2, UserID: 2, ItemID: 103, Timestamp: 20},
		},
	}
}

func newTestStateManager(t *testing.T, engine any, store StateStore) *StateManager {
	t.Helper()
	m, err := NewStateManager(NewEngineAdapter(engine, zerolog.Nop()), store, t.TempDir(), "graph.snapshot", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStateManager failed: %v", err)
	}
	return m
}

func TestNewStateManager_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := NewStateManager(NewEngineAdapter(nil, zerolog.Nop()), &memStateStore{}, dir, "graph.snapshot", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStateManager failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("data dir should exist after construction, stat err = %v", err)
	}
}

func TestStartup_ColdStart(t *testing.T) {
	engine := newRecordingEngine()
	store := newPopulatedStateStore()
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	if store.seedCalls != 1 {
		t.Errorf("seed calls = %d, want 1", store.seedCalls)
	}

	wantTags := [][2]int{{101, 1}, {103, 2}, {999, models.GenreUnknown}}
	if len(engine.tags) != len(wantTags) {
		t.Fatalf("tags = %v, want %v", engine.tags, wantTags)
	}
	for i := range wantTags {
		if engine.tags[i] != wantTags[i] {
			t.Errorf("tag[%d] = %v, want %v", i, engine.tags[i], wantTags[i])
		}
	}

	wantAdds := []edgeCall{{1, 101, 10}, {2, 103, 20}}
	if len(engine.adds) != len(wantAdds) {
		t.Fatalf("adds = %v, want %v", engine.adds, wantAdds)
	}
	for i := range wantAdds {
		if engine.adds[i] != wantAdds[i] {
			t.Errorf("add[%d] = %v, want %v", i, engine.adds[i], wantAdds[i])
		}
	}

	// A cold start with a populated graph takes an initial snapshot.
	if store.replaced != 1 {
		t.Errorf("snapshot writes = %d, want 1 initial save", store.replaced)
	}
	if string(store.snapshot) != "snapshot-bytes" {
		t.Errorf("stored snapshot = %q, want the engine's serialized state", store.snapshot)
	}
}

func TestStartup_ReconciliationRunsAfterRestore(t *testing.T) {
	engine := newRecordingEngine()
	engine.loadItems = 5
	store := newPopulatedStateStore()
	store.snapshot = []byte("stored-blob")
	store.snapshotAt = time.Now()
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	if len(engine.loads) != 1 {
		t.Fatalf("loads = %v, want one staged load", engine.loads)
	}
	staged, err := os.ReadFile(engine.loads[0])
	if err != nil || string(staged) != "stored-blob" {
		t.Errorf("staged file = %q (err %v), want the stored blob", staged, err)
	}

	// The store stays authoritative: replay happens even after a
	// successful restore.
	if len(engine.adds) != 2 {
		t.Errorf("adds = %v, want both stored interactions replayed", engine.adds)
	}
	if len(engine.tags) != 3 {
		t.Errorf("tags = %v, want the full catalog retagged", engine.tags)
	}

	if store.replaced != 0 {
		t.Errorf("snapshot writes = %d, want none after a successful restore", store.replaced)
	}
}

func TestStartup_DiscardsUnreadableSnapshot(t *testing.T) {
	engine := newRecordingEngine()
	engine.loadErr = errors.New("snapshot checksum mismatch")
	store := newPopulatedStateStore()
	store.snapshot = []byte("corrupt-blob")
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err != nil {
		t.Fatalf("Startup must not fail on a corrupt snapshot: %v", err)
	}

	if len(engine.adds) != 2 {
		t.Errorf("adds = %v, want a full rebuild from the store", engine.adds)
	}
	if store.replaced != 1 {
		t.Errorf("snapshot writes = %d, want a fresh save replacing the corrupt one", store.replaced)
	}
	if string(store.snapshot) != "snapshot-bytes" {
		t.Errorf("stored snapshot = %q, want the rebuilt state", store.snapshot)
	}
}

func TestStartup_DiscardsEmptySnapshot(t *testing.T) {
	engine := newRecordingEngine()
	engine.loadItems = 0 // decodes cleanly but holds nothing
	store := newPopulatedStateStore()
	store.snapshot = []byte("empty-graph-blob")
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	if store.replaced != 1 {
		t.Errorf("snapshot writes = %d, want a fresh save after discarding the empty one", store.replaced)
	}
}

func TestStartup_SeedErrorIsFatal(t *testing.T) {
	engine := newRecordingEngine()
	store := newPopulatedStateStore()
	store.seedErr = errors.New("disk full")
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err == nil {
		t.Fatal("expected seed failure to be fatal")
	}
	if len(engine.loads) != 0 {
		t.Error("no snapshot load should be attempted after a seed failure")
	}
}

func TestStartup_SnapshotFetchErrorIsFatal(t *testing.T) {
	engine := newRecordingEngine()
	store := newPopulatedStateStore()
	store.fetchErr = errors.New("connection lost")
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err == nil {
		t.Fatal("expected store access failure to be fatal")
	}
	if len(engine.adds) != 0 {
		t.Error("no reconciliation should run after a store access failure")
	}
}

func TestStartup_EngineWithoutPersistence(t *testing.T) {
	engine := &graphOnlyEngine{}
	store := newPopulatedStateStore()
	store.snapshot = []byte("stored-blob")
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	if len(engine.adds) != 2 {
		t.Errorf("adds = %v, want a rebuild from the store", engine.adds)
	}
	if store.replaced != 0 {
		t.Errorf("snapshot writes = %d, want none for an engine without persistence", store.replaced)
	}
}

func TestStartup_InitialSaveFailureIsNotFatal(t *testing.T) {
	engine := newRecordingEngine()
	engine.saveErr = errors.New("disk full")
	store := newPopulatedStateStore()
	m := newTestStateManager(t, engine, store)

	if err := m.Startup(context.Background()); err != nil {
		t.Fatalf("Startup must survive an initial save failure: %v", err)
	}
	if store.replaced != 0 {
		t.Errorf("snapshot writes = %d, want none", store.replaced)
	}
}

func TestShutdown_EmptyGraphLeavesSnapshotUntouched(t *testing.T) {
	engine := newRecordingEngine()
	store := &memStateStore{snapshot: []byte("keep-me")}
	m := newTestStateManager(t, engine, store)

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if len(engine.saves) != 0 {
		t.Errorf("saves = %v, want none for an empty graph", engine.saves)
	}
	if string(store.snapshot) != "keep-me" {
		t.Errorf("stored snapshot = %q, want it untouched", store.snapshot)
	}
}

func TestShutdown_PersistsPopulatedGraph(t *testing.T) {
	engine := newRecordingEngine()
	engine.AddInteraction(1, 101, 10)
	engine.saveData = []byte("final-state")
	store := &memStateStore{snapshot: []byte("old-state")}
	m := newTestStateManager(t, engine, store)

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if store.replaced != 1 {
		t.Errorf("snapshot writes = %d, want 1", store.replaced)
	}
	if string(store.snapshot) != "final-state" {
		t.Errorf("stored snapshot = %q, want final-state", store.snapshot)
	}
}

func TestShutdown_SaveErrorPropagates(t *testing.T) {
	engine := newRecordingEngine()
	engine.AddInteraction(1, 101, 10)
	engine.saveErr = errors.New("disk full")
	m := newTestStateManager(t, engine, &memStateStore{})

	if err := m.Shutdown(context.Background()); err == nil {
		t.Fatal("expected shutdown save failure to propagate")
	}
}

func TestSaveNow(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		engine := newRecordingEngine()
		store := &memStateStore{}
		m := newTestStateManager(t, engine, store)

		count, err := m.SaveNow(context.Background())
		if !errors.Is(err, ErrEmptyGraph) {
			t.Errorf("error = %v, want ErrEmptyGraph", err)
		}
		if count != 0 || store.replaced != 0 {
			t.Errorf("count = %d, writes = %d, want 0 and 0", count, store.replaced)
		}
	})

	t.Run("populated graph", func(t *testing.T) {
		engine := newRecordingEngine()
		engine.AddInteraction(1, 101, 10)
		engine.AddInteraction(1, 102, 11)
		engine.AddInteraction(2, 103, 12)
		store := &memStateStore{}
		m := newTestStateManager(t, engine, store)

		count, err := m.SaveNow(context.Background())
		if err != nil {
			t.Fatalf("SaveNow failed: %v", err)
		}
		if count != 3 {
			t.Errorf("count = %d, want 3", count)
		}
		if store.replaced != 1 {
			t.Errorf("snapshot writes = %d, want 1", store.replaced)
		}
	})

	t.Run("no persistence capability", func(t *testing.T) {
		engine := &graphOnlyEngine{}
		m := newTestStateManager(t, engine, &memStateStore{})

		_, err := m.SaveNow(context.Background())
		if !errors.Is(err, ErrEmptyGraph) {
			// Without a counter the graph reads as empty, which wins
			// over the absent saver.
			t.Errorf("error = %v, want ErrEmptyGraph", err)
		}
	})
}

func TestStateStore_ReplaceSnapshotPersistsExactBytes(t *testing.T) {
	engine := newRecordingEngine()
	engine.AddInteraction(1, 101, 10)
	engine.saveData = []byte{0x1f, 0x8b, 0x00, 0xff}
	store := &memStateStore{}
	m := newTestStateManager(t, engine, store)

	if _, err := m.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}

	if len(store.snapshot) != 4 || store.snapshot[0] != 0x1f || store.snapshot[3] != 0xff {
		t.Errorf("stored snapshot = %v, want the exact serialized bytes", store.snapshot)
	}
}
