// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package engine

import (
	"testing"

	"github.com/rs/zerolog"
)

// buildTwoHopGraph wires a small co-interaction neighborhood:
//
//	user 1: 101, 102
//	user 2: 101, 103
//	user 3: 102, 104, 105
func buildTwoHopGraph(e *Engine) {
	e.AddInteraction(1, 101, 1000)
	e.AddInteraction(1, 102, 1001)
	e.AddInteraction(2, 101, 1002)
	e.AddInteraction(2, 103, 1003)
	e.AddInteraction(3, 102, 1004)
	e.AddInteraction(3, 104, 1005)
	e.AddInteraction(3, 105, 1006)
}

func TestRecommend_TwoHopNeighborhood(t *testing.T) {
	e := newTestEngine()
	buildTwoHopGraph(e)

	// Users 2 and 3 each share one item with user 1, so 103, 104, and
	// 105 all score 1.0 and rank by ascending id.
	got := e.Recommend(1, 5, nil)
	want := []int{103, 104, 105}
	assertIDs(t, got, want)
}

func TestRecommend_TruncatesToK(t *testing.T) {
	e := newTestEngine()
	buildTwoHopGraph(e)

	got := e.Recommend(1, 2, nil)
	assertIDs(t, got, []int{103, 104})
}

func TestRecommend_SharedItemsWeighNeighbors(t *testing.T) {
	e := newTestEngine()

	// User 2 shares two items with user 1; user 3 shares one. Item 201
	// arrives through the heavier neighbor and must outrank item 202
	// despite its larger id.
	e.AddInteraction(1, 101, 1000)
	e.AddInteraction(1, 102, 1001)
	e.AddInteraction(2, 101, 1002)
	e.AddInteraction(2, 102, 1003)
	e.AddInteraction(2, 201, 1004)
	e.AddInteraction(3, 101, 1005)
	e.AddInteraction(3, 200, 1006)

	got := e.Recommend(1, 5, nil)
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 candidates", got)
	}
	if got[0] != 201 {
		t.Errorf("top candidate = %d, want 201 via the heavier neighbor", got[0])
	}
	if got[1] != 200 {
		t.Errorf("second candidate = %d, want 200", got[1])
	}
}

func TestRecommend_GenreBias(t *testing.T) {
	e := newTestEngine()
	buildTwoHopGraph(e)

	// 103, 104, 105 tie at 1.0. Tagging 105 with a preferred genre
	// doubles its score and lifts it over the id-order tie break.
	e.SetItemGenre(105, 3)

	got := e.Recommend(1, 5, []int{3})
	if len(got) != 3 {
		t.Fatalf("got %v, want 3 candidates", got)
	}
	if got[0] != 105 {
		t.Errorf("top candidate = %d, want genre-boosted 105", got[0])
	}
	assertIDs(t, got[1:], []int{103, 104})
}

func TestRecommend_UnknownGenreNeverBiases(t *testing.T) {
	e := newTestEngine()
	buildTwoHopGraph(e)

	// Genre 0 is the Unknown bucket; preferring it changes nothing
	// even when an item is explicitly tagged 0.
	e.SetItemGenre(104, 0)

	got := e.Recommend(1, 5, []int{0})
	assertIDs(t, got, []int{103, 104, 105})
}

func TestRecommend_ExcludesOwnItems(t *testing.T) {
	e := newTestEngine()
	buildTwoHopGraph(e)

	got := e.Recommend(1, 10, nil)
	for _, id := range got {
		if id == 101 || id == 102 {
			t.Errorf("result %v contains the user's own item %d", got, id)
		}
	}
}

func TestRecommend_ColdUser(t *testing.T) {
	e := newTestEngine()
	buildTwoHopGraph(e)

	if got := e.Recommend(99, 5, []int{1, 2}); len(got) != 0 {
		t.Errorf("cold user got %v, want empty", got)
	}
}

func TestRecommend_NoNeighbors(t *testing.T) {
	e := newTestEngine()

	// User 1 is alone on item 101; there is no second hop to take.
	e.AddInteraction(1, 101, 1000)

	if got := e.Recommend(1, 5, nil); len(got) != 0 {
		t.Errorf("isolated user got %v, want empty", got)
	}
}

func TestRecommend_NonPositiveK(t *testing.T) {
	e := newTestEngine()
	buildTwoHopGraph(e)

	for _, k := range []int{0, -1} {
		if got := e.Recommend(1, k, nil); len(got) != 0 {
			t.Errorf("k=%d got %v, want empty", k, got)
		}
	}
}

func TestRecommend_ConfigurableBias(t *testing.T) {
	// A large bias must let a single-weight item overtake a
	// double-weight one.
	e := New(Config{GenreBias: 10}, zerolog.Nop())

	e.AddInteraction(1, 101, 1000)
	e.AddInteraction(1, 102, 1001)
	e.AddInteraction(2, 101, 1002)
	e.AddInteraction(2, 102, 1003)
	e.AddInteraction(2, 201, 1004) // weight 2 via user 2
	e.AddInteraction(3, 101, 1005)
	e.AddInteraction(3, 202, 1006) // weight 1 via user 3
	e.SetItemGenre(202, 6)

	got := e.Recommend(1, 5, []int{6})
	if len(got) != 2 || got[0] != 202 {
		t.Errorf("got %v, want [202 201]", got)
	}
}

func assertIDs(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: %d, want %d (full: got %v want %v)", i, got[i], want[i], got, want)
			return
		}
	}
}
