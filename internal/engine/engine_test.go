// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package engine

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func newTestEngine() *Engine {
	return New(DefaultConfig(), zerolog.Nop())
}

func TestNew_AppliesDefaults(t *testing.T) {
	e := New(Config{}, zerolog.Nop())
	if e.config.GenreBias != DefaultConfig().GenreBias {
		t.Errorf("genre bias = %v, want default %v", e.config.GenreBias, DefaultConfig().GenreBias)
	}

	e = New(Config{GenreBias: 0.5}, zerolog.Nop())
	if e.config.GenreBias != DefaultConfig().GenreBias {
		t.Errorf("sub-1 genre bias kept: %v", e.config.GenreBias)
	}
}

func TestAddInteraction_Idempotent(t *testing.T) {
	e := newTestEngine()

	e.AddInteraction(1, 101, 1000)
	e.AddInteraction(1, 101, 2000)

	if got := e.EdgeCount(); got != 1 {
		t.Errorf("edges = %d, want 1", got)
	}
	if got := e.UserCount(); got != 1 {
		t.Errorf("users = %d, want 1", got)
	}
	if got := e.ItemCount(); got != 1 {
		t.Errorf("items = %d, want 1", got)
	}
}

func TestRemoveInteraction(t *testing.T) {
	e := newTestEngine()

	e.AddInteraction(1, 101, 1000)
	e.AddInteraction(1, 102, 1001)
	e.AddInteraction(2, 101, 1002)

	e.RemoveInteraction(1, 101)

	if got := e.EdgeCount(); got != 2 {
		t.Errorf("edges = %d, want 2", got)
	}
	// Item 101 keeps user 2's edge, so it remains a node.
	if got := e.ItemCount(); got != 2 {
		t.Errorf("items = %d, want 2", got)
	}

	// Removing an absent edge is a no-op.
	e.RemoveInteraction(1, 101)
	e.RemoveInteraction(99, 999)
	if got := e.EdgeCount(); got != 2 {
		t.Errorf("edges after no-op removes = %d, want 2", got)
	}
}

func TestRemoveInteraction_DropsUntaggedItem(t *testing.T) {
	e := newTestEngine()

	e.AddInteraction(1, 101, 1000)
	e.RemoveInteraction(1, 101)

	if got := e.ItemCount(); got != 0 {
		t.Errorf("items = %d, want 0 after last edge removed", got)
	}
	if got := e.UserCount(); got != 0 {
		t.Errorf("users = %d, want 0 after last edge removed", got)
	}
}

func TestRemoveInteraction_KeepsTaggedItem(t *testing.T) {
	e := newTestEngine()

	e.SetItemGenre(101, 1)
	e.AddInteraction(1, 101, 1000)
	e.RemoveInteraction(1, 101)

	// A genre tag keeps the item in the graph even with no edges.
	if got := e.ItemCount(); got != 1 {
		t.Errorf("items = %d, want 1", got)
	}
}

func TestSetItemGenre(t *testing.T) {
	e := newTestEngine()

	e.SetItemGenre(101, 1)
	if got := e.ItemCount(); got != 1 {
		t.Errorf("items = %d, want 1", got)
	}

	// Re-tagging does not create a second node.
	e.SetItemGenre(101, 4)
	if got := e.ItemCount(); got != 1 {
		t.Errorf("items after retag = %d, want 1", got)
	}
}

func TestItemCount_UnionOfTaggedAndEdged(t *testing.T) {
	e := newTestEngine()

	e.SetItemGenre(101, 1)
	e.SetItemGenre(102, 2)
	e.AddInteraction(1, 102, 1000)
	e.AddInteraction(1, 103, 1001)

	// 101 tagged only, 102 tagged and edged, 103 edged only.
	if got := e.ItemCount(); got != 3 {
		t.Errorf("items = %d, want 3", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	e := newTestEngine()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				e.AddInteraction(n, 100+j, int64(j))
				e.SetItemGenre(100+j, j%7)
				_ = e.Recommend(n, 5, []int{1})
				_ = e.ItemCount()
				if j%10 == 0 {
					e.RemoveInteraction(n, 100+j)
				}
			}
		}(i)
	}
	wg.Wait()

	if got := e.ItemCount(); got == 0 {
		t.Error("expected items to remain after concurrent mutations")
	}
}
