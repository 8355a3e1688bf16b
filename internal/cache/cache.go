// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/config"
)

// cacheType labels cache metrics.
const cacheType = "response"

// Backend names accepted by the factory.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Store is the response-cache contract. The cache is an optimization
// layer, never a source of truth: implementations report backend
// failures as misses on read and swallow them on write, so a broken
// cache degrades throughput but never correctness.
type Store interface {
	// Get returns the cached payload for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Put stores payload under key with the store's fixed TTL.
	Put(ctx context.Context, key string, payload []byte)

	// InvalidateUser removes every entry under the user's key prefix
	// and returns how many were removed.
	InvalidateUser(ctx context.Context, userID int64) int

	// Close releases backend resources.
	Close() error
}

// userKeyPrefix is the invalidation prefix for one user's entries. It
// must agree with the key schema rec:{user}:{algo}:{k}.
func userKeyPrefix(userID int64) string {
	return fmt.Sprintf("rec:%d:", userID)
}

// New builds the configured cache backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg config.CacheConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(cfg.TTL, logger), nil
	case BackendBadger, "":
		opts := badger.DefaultOptions(cfg.Path)
		opts.Logger = nil // badger's own logging is too chatty for a cache
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger cache at %q: %w", cfg.Path, err)
		}
		return NewBadgerStore(db, cfg.TTL, cfg.Breaker, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
