// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/config"
)

func TestNew_MemoryBackend(t *testing.T) {
	s, err := New(config.CacheConfig{Backend: BackendMemory, TTL: time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("store type = %T, want *MemoryStore", s)
	}
}

func TestNew_BadgerBackend(t *testing.T) {
	cfg := config.CacheConfig{
		Backend: BackendBadger,
		Path:    t.TempDir(),
		TTL:     time.Hour,
		Breaker: config.BreakerConfig{FailureThreshold: 5, Cooldown: 30 * time.Second},
	}

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, ok := s.(*BadgerStore); !ok {
		t.Errorf("store type = %T, want *BadgerStore", s)
	}

	ctx := context.Background()
	s.Put(ctx, "rec:1:bfs:5", []byte("payload"))
	if _, hit := s.Get(ctx, "rec:1:bfs:5"); !hit {
		t.Error("expected a hit through the factory-built store")
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNew_EmptyBackendDefaultsToBadger(t *testing.T) {
	s, err := New(config.CacheConfig{Path: t.TempDir(), TTL: time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*BadgerStore); !ok {
		t.Errorf("store type = %T, want *BadgerStore", s)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	if _, err := New(config.CacheConfig{Backend: "redis"}, zerolog.Nop()); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestNew_BadgerSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.CacheConfig{Backend: BackendBadger, Path: dir, TTL: time.Hour}
	ctx := context.Background()

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	s.Put(ctx, "rec:1:bfs:5", []byte("durable"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, hit := reopened.Get(ctx, "rec:1:bfs:5")
	if !hit || !bytes.Equal(got, []byte("durable")) {
		t.Errorf("payload = %q (hit %v), want the entry written before reopen", got, hit)
	}
}
