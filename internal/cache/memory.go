// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/metrics"
)

// janitorInterval bounds how often the background sweep reclaims
// expired entries. Expiry itself is enforced lazily on Get, so the
// sweep only controls memory, not correctness.
const janitorInterval = time.Minute

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore is the in-process cache backend, used for tests and
// cache-less deployments. It needs no circuit breaker: a map cannot
// fail, only miss.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	logger  zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore builds a memory cache with the given TTL and starts
// its janitor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMemoryStore(ttl time.Duration, logger zerolog.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		logger:  logger.With().Str("component", "cache").Str("backend", BackendMemory).Logger(),
		done:    make(chan struct{}),
	}

	interval := janitorInterval
	if ttl < interval {
		interval = ttl
	}
	go s.janitor(interval)

	return s
}

// Get returns the payload for key. Expired entries count as misses and
// are dropped on the spot.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		metrics.RecordCacheMiss(cacheType)
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		metrics.RecordCacheMiss(cacheType)
		return nil, false
	}

	metrics.RecordCacheHit(cacheType)
	return append([]byte(nil), entry.payload...), true
}

// Put stores a copy of payload under key.
func (s *MemoryStore) Put(_ context.Context, key string, payload []byte) {
	entry := memoryEntry{
		payload:   append([]byte(nil), payload...),
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

// InvalidateUser removes every entry under the user's prefix.
func (s *MemoryStore) InvalidateUser(_ context.Context, userID int64) int {
	prefix := userKeyPrefix(userID)

	s.mu.Lock()
	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		metrics.CacheInvalidations.Inc()
	}
	return removed
}

// Close stops the janitor. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Len reports the live entry count, counting entries the janitor has
// not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()

	s.mu.Lock()
	swept := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			swept++
		}
	}
	s.mu.Unlock()

	if swept > 0 {
		s.logger.Debug().Int("entries", swept).Msg("swept expired cache entries")
	}
}
