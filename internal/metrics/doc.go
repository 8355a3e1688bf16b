// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the recommendation service with the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - DuckDB query performance
  - Recommendation pipeline throughput, latency, and fallback tier usage
  - Response cache hit/miss rates and circuit breaker state
  - Graph engine mutations, reconciliation, and snapshot persistence
  - NATS event pipeline throughput
  - WebSocket activity feed connections

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

Recommendation Metrics:
  - recommend_requests_total: Recommendation requests (counter)
    Labels: algorithm (bfs, ppr), source (cache, computed)
  - recommend_duration_seconds: Computation latency (histogram)
    Labels: algorithm
  - recommend_items_served_total: Items served by producing tier (counter)
    Labels: tier (graph, popularity, catalog)
  - recommend_fallbacks_total: Requests where a fallback tier fired (counter)
    Labels: tier (popularity, catalog)

Cache Metrics:
  - cache_hits_total / cache_misses_total: Hit and miss counts (counter)
    Labels: cache_type
  - cache_errors_total: Backend failures (counter)
    Labels: cache_type, operation
  - cache_invalidations_total: Per-user invalidations (counter)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through the breaker (counter)
    Labels: name, result

Engine Metrics:
  - engine_mutations_total: Applied graph mutations (counter)
    Labels: operation
  - engine_items: Item nodes currently in the graph (gauge)
  - engine_reconciliation_duration_seconds: Startup replay duration (histogram)
  - engine_snapshot_saves_total: Snapshot save attempts (counter)
    Labels: trigger, result
  - engine_snapshot_duration_seconds: Snapshot serialization time (histogram)

Event Pipeline Metrics:
  - nats_messages_published_total / nats_messages_consumed_total /
    nats_messages_processed_total / nats_messages_parse_failed_total /
    nats_publish_errors_total: Pipeline throughput counters
  - nats_processing_duration_seconds: Consumer processing time (histogram)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/tomtom215/graphrec/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordAPIRequest("GET", "/recommend/{user_id}", "200", 23*time.Millisecond)
	    metrics.RecordRecommendation("bfs", "computed", 4*time.Millisecond)
	}

# Thread Safety

All metric recording functions are safe for concurrent use from multiple
goroutines. The Prometheus client library handles synchronization internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use chi route patterns, never raw paths with ids
  - Error types are truncated to fixed-length prefixes
  - User ids never appear as label values

# See Also

  - internal/api: HTTP middleware with metrics integration
  - internal/recommend: pipeline instrumentation
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
