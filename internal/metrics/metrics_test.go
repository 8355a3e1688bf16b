// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful recommendation request",
			method:     "GET",
			endpoint:   "/recommend/{user_id}",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "successful interaction create",
			method:     "POST",
			endpoint:   "/interaction/",
			statusCode: "200",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "unauthorized request",
			method:     "DELETE",
			endpoint:   "/interaction/",
			statusCode: "401",
			duration:   1 * time.Millisecond,
		},
		{
			name:       "forbidden cross-user mutation",
			method:     "POST",
			endpoint:   "/interaction/",
			statusCode: "403",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			method:     "GET",
			endpoint:   "/recommend/{user_id}",
			statusCode: "429",
			duration:   1 * time.Millisecond,
		},
		{
			name:       "internal server error",
			method:     "POST",
			endpoint:   "/admin/snapshot",
			statusCode: "500",
			duration:   500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the request - should not panic
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "interactions",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "user_preferences",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query with short error",
			operation: "DELETE",
			table:     "interactions",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error - should truncate to 50 chars",
			operation: "SELECT",
			table:     "items",
			duration:  50 * time.Millisecond,
			err:       errors.New(strings.Repeat("x", 120)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

// TestRecordRecommendation tests recommendation request recording
func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		source    string
		duration  time.Duration
	}{
		{"computed bfs", "bfs", "computed", 4 * time.Millisecond},
		{"computed ppr", "ppr", "computed", 12 * time.Millisecond},
		{"cached bfs", "bfs", "cache", 200 * time.Microsecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordRecommendation(tt.algorithm, tt.source, tt.duration)
		})
	}
}

// TestRecordRecommendationTiers tests tier contribution recording
func TestRecordRecommendationTiers(t *testing.T) {
	tests := []struct {
		name       string
		graph      int
		popularity int
		catalog    int
	}{
		{"graph filled everything", 5, 0, 0},
		{"popularity topped up", 3, 2, 0},
		{"all three tiers", 1, 2, 2},
		{"cold start - no graph", 0, 3, 2},
		{"empty response", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordRecommendationTiers(tt.graph, tt.popularity, tt.catalog)
		})
	}
}

// TestRecordRecommendationTiers_FallbackCounter verifies fallback counters
// only move when a fallback tier actually contributed.
func TestRecordRecommendationTiers_FallbackCounter(t *testing.T) {
	before := testutil.ToFloat64(RecommendFallbacks.WithLabelValues("popularity"))
	RecordRecommendationTiers(5, 0, 0)
	after := testutil.ToFloat64(RecommendFallbacks.WithLabelValues("popularity"))
	if after != before {
		t.Errorf("popularity fallback counter moved on graph-only response: %v -> %v", before, after)
	}

	RecordRecommendationTiers(3, 2, 0)
	after = testutil.ToFloat64(RecommendFallbacks.WithLabelValues("popularity"))
	if after != before+1 {
		t.Errorf("popularity fallback counter = %v, want %v", after, before+1)
	}
}

// TestCacheMetrics tests cache metric recording
func TestCacheMetrics(t *testing.T) {
	RecordCacheHit("response")
	RecordCacheMiss("response")
	RecordCacheError("response", "get")
	RecordCacheError("response", "put")
	RecordCacheError("response", "invalidate")
	CacheInvalidations.Inc()
}

// TestCacheHitCounter verifies hit counts accumulate per cache type
func TestCacheHitCounter(t *testing.T) {
	before := testutil.ToFloat64(CacheHits.WithLabelValues("counter_test"))
	RecordCacheHit("counter_test")
	RecordCacheHit("counter_test")
	after := testutil.ToFloat64(CacheHits.WithLabelValues("counter_test"))
	if after != before+2 {
		t.Errorf("cache hits = %v, want %v", after, before+2)
	}
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "response_cache"

	// State values: 0=closed, 1=half-open, 2=open
	CircuitBreakerState.WithLabelValues(cbName).Set(0)
	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	CircuitBreakerState.WithLabelValues(cbName).Set(1)

	CircuitBreakerRequests.WithLabelValues(cbName, "success").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "failure").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()
}

// TestEngineMetrics tests graph engine metric recording
func TestEngineMetrics(t *testing.T) {
	RecordEngineMutation("add_interaction")
	RecordEngineMutation("remove_interaction")
	RecordEngineMutation("set_item_genre")

	EngineItems.Set(9)
	EngineReconciliationDuration.Observe(0.25)
}

// TestRecordSnapshotSave tests snapshot save metric recording
func TestRecordSnapshotSave(t *testing.T) {
	tests := []struct {
		name     string
		trigger  string
		duration time.Duration
		err      error
	}{
		{"startup save", "startup", 50 * time.Millisecond, nil},
		{"admin save", "admin", 30 * time.Millisecond, nil},
		{"shutdown save", "shutdown", 80 * time.Millisecond, nil},
		{"failed save", "shutdown", 10 * time.Millisecond, errors.New("disk full")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordSnapshotSave(tt.trigger, tt.duration, tt.err)
		})
	}
}

// TestRecordSnapshotSkipped tests skipped snapshot recording
func TestRecordSnapshotSkipped(t *testing.T) {
	before := testutil.ToFloat64(SnapshotSaves.WithLabelValues("shutdown", "skipped"))
	RecordSnapshotSkipped("shutdown")
	after := testutil.ToFloat64(SnapshotSaves.WithLabelValues("shutdown", "skipped"))
	if after != before+1 {
		t.Errorf("skipped snapshot counter = %v, want %v", after, before+1)
	}
}

// TestNATSMetrics tests event pipeline metric recording
func TestNATSMetrics(t *testing.T) {
	RecordNATSPublish(nil)
	RecordNATSPublish(errors.New("connection closed"))
	RecordNATSConsume()
	RecordNATSProcessed(5 * time.Millisecond)
	RecordNATSParseFailed()
}

// TestRecordNATSPublish_ErrorSplitsCounters verifies failed publishes land in
// the error counter, not the published counter.
func TestRecordNATSPublish_ErrorSplitsCounters(t *testing.T) {
	pubBefore := testutil.ToFloat64(NATSMessagesPublished)
	errBefore := testutil.ToFloat64(NATSPublishErrors)

	RecordNATSPublish(errors.New("timeout"))

	if got := testutil.ToFloat64(NATSMessagesPublished); got != pubBefore {
		t.Errorf("published counter moved on error: %v -> %v", pubBefore, got)
	}
	if got := testutil.ToFloat64(NATSPublishErrors); got != errBefore+1 {
		t.Errorf("publish errors = %v, want %v", got, errBefore+1)
	}
}

// TestWebSocketMetrics tests WebSocket metric recording
func TestWebSocketMetrics(t *testing.T) {
	WSConnections.Set(10)
	WSConnections.Inc()
	WSConnections.Dec()

	WSMessagesSent.Add(100)

	WSErrors.WithLabelValues("write_failed").Inc()
	WSErrors.WithLabelValues("slow_client").Inc()
}

// TestRecordLoginAttempt tests auth metric recording
func TestRecordLoginAttempt(t *testing.T) {
	RecordLoginAttempt("local", "success")
	RecordLoginAttempt("local", "failure")
	RecordLoginAttempt("local", "throttled")
	RecordLoginAttempt("oidc", "success")
}

// TestTrackActiveRequest tests active request tracking
func TestTrackActiveRequest(t *testing.T) {
	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 10; i++ {
		TrackActiveRequest(false)
	}
}

// TestConcurrentMetricRecording tests thread safety of metric recording
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 50
	operationsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordDBQuery("SELECT", "interactions", time.Duration(j)*time.Millisecond, nil)
				RecordAPIRequest("GET", "/recommend/{user_id}", "200", time.Duration(j)*time.Millisecond)
				RecordRecommendation("bfs", "computed", time.Duration(j)*time.Microsecond)
				RecordCacheHit("response")
				RecordEngineMutation("add_interaction")
				RecordNATSPublish(nil)
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}

	wg.Wait()
}

// TestMetricsRegistration verifies all metrics are properly registered
func TestMetricsRegistration(t *testing.T) {
	metrics := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		DBQueryDuration,
		DBQueryErrors,
		RecommendRequests,
		RecommendDuration,
		RecommendItemsServed,
		RecommendFallbacks,
		CacheHits,
		CacheMisses,
		CacheErrors,
		CacheInvalidations,
		CircuitBreakerState,
		CircuitBreakerRequests,
		EngineMutations,
		EngineItems,
		EngineReconciliationDuration,
		SnapshotSaves,
		SnapshotDuration,
		NATSMessagesPublished,
		NATSMessagesConsumed,
		NATSMessagesProcessed,
		NATSMessagesParseFailed,
		NATSPublishErrors,
		NATSProcessingDuration,
		WSConnections,
		WSMessagesSent,
		WSErrors,
		AuthLoginAttempts,
		AppInfo,
		AppUptime,
	}

	for _, m := range metrics {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordDBQuery("SELECT", "items", time.Millisecond, nil)
	RecordAPIRequest("GET", "/items", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

// Benchmark tests for metrics performance

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/recommend/{user_id}", "200", 25*time.Millisecond)
	}
}

func BenchmarkRecordRecommendation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordRecommendation("bfs", "computed", 4*time.Millisecond)
	}
}

func BenchmarkRecordCacheHit(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordCacheHit("response")
	}
}
