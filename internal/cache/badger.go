// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/graphrec/internal/config"
	"github.com/tomtom215/graphrec/internal/metrics"
)

// BadgerStore is the durable cache backend. Entries carry the store's
// TTL and Badger expires them itself; per-user invalidation walks the
// user's key prefix inside one transaction.
//
// Every backend call runs through a circuit breaker. After the
// configured run of consecutive failures the breaker opens and calls
// short-circuit to miss/no-op until the cooldown elapses, so a broken
// disk cannot stall the request path.
type BadgerStore struct {
	db      *badger.DB
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

// NewBadgerStore wraps an open Badger handle. The caller keeps ownership
// of nothing: Close tears the handle down.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(db *badger.DB, ttl time.Duration, breakerCfg config.BreakerConfig, logger zerolog.Logger) *BadgerStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	log := logger.With().Str("component", "cache").Str("backend", BackendBadger).Logger()
	return &BadgerStore{
		db:      db,
		ttl:     ttl,
		breaker: newCacheBreaker(breakerCfg, log),
		logger:  log,
	}
}

// execute runs one backend call through the breaker and keeps the
// breaker metrics coherent. Rejections while the circuit is open are
// logged at debug; real backend errors at warn.
func (s *BadgerStore) execute(op string, fn func() (any, error)) (any, error) {
	result, err := s.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			s.logger.Debug().Str("op", op).Msg("cache call rejected, circuit open")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
			metrics.RecordCacheError(cacheType, op)
			s.logger.Warn().Err(err).Str("op", op).Msg("cache backend error")
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return result, nil
}

// Get returns the cached payload for key. Backend failures and open
// circuits report a miss.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool) {
	result, err := s.execute("get", func() (any, error) {
		var payload []byte
		verr := s.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				// An absent key is a healthy outcome, not a
				// backend failure the breaker should count.
				return nil
			}
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				payload = append([]byte(nil), val...)
				return nil
			})
		})
		return payload, verr
	})
	if err != nil {
		return nil, false
	}

	payload, ok := result.([]byte)
	if !ok || payload == nil {
		metrics.RecordCacheMiss(cacheType)
		return nil, false
	}
	metrics.RecordCacheHit(cacheType)
	return payload, true
}

// Put stores payload under key with the store TTL. Failures are
// swallowed; the next read simply misses.
func (s *BadgerStore) Put(_ context.Context, key string, payload []byte) {
	//nolint:errcheck // write failures degrade to a future miss
	s.execute("put", func() (any, error) {
		return nil, s.db.Update(func(txn *badger.Txn) error {
			entry := badger.NewEntry([]byte(key), payload).WithTTL(s.ttl)
			return txn.SetEntry(entry)
		})
	})
}

// InvalidateUser removes every entry under the user's prefix in a
// single transaction and returns the removed count. Failures report
// zero; stale entries then age out through the TTL.
func (s *BadgerStore) InvalidateUser(_ context.Context, userID int64) int {
	result, err := s.execute("invalidate", func() (any, error) {
		removed := 0
		uerr := s.db.Update(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()

			prefix := []byte(userKeyPrefix(userID))
			var keys [][]byte
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
			for _, key := range keys {
				if err := txn.Delete(key); err != nil {
					return err
				}
				removed++
			}
			return nil
		})
		return removed, uerr
	})
	if err != nil {
		return 0
	}

	removed, _ := result.(int)
	if removed > 0 {
		metrics.CacheInvalidations.Inc()
	}
	return removed
}

// BreakerState reports the circuit breaker state for observability.
func (s *BadgerStore) BreakerState() string {
	return stateToString(s.breaker.State())
}

// Close tears down the Badger handle.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
