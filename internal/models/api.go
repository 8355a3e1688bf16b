// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package models

import (
	"time"
)

// Recommendation sources reported in RecommendationResponse.Source.
const (
	// SourceCache marks a response served verbatim from the response cache.
	SourceCache = "Response Cache"

	// SourceHybrid marks a freshly computed response, whether the graph
	// filled it alone or the popularity and catalog tiers topped it up.
	SourceHybrid = "Hybrid (Graph + Fallback)"
)

// Response statuses for StatusResponse.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RecommendedItem is one entry of a recommendation list. Reason names the
// tier that produced it, for example "Graph BFS" or "Global Trending".
type RecommendedItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// RecommendationResponse is the body of GET /recommend/{user_id}. LatencyMS
// measures server-side computation only and is reported even on cache hits,
// where it reflects the lookup rather than the original computation.
type RecommendationResponse struct {
	UserID          int64             `json:"user_id"`
	Recommendations []RecommendedItem `json:"recommendations"`
	LatencyMS       float64           `json:"latency_ms"`
	Source          string            `json:"source"`
}

// StatusResponse is the uniform body for mutations and errors.
type StatusResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// HealthResponse is the body of GET /api/health. DB reports the store check
// outcome, "Connected" or "Unavailable".
type HealthResponse struct {
	Status     string `json:"status"`
	GraphNodes int    `json:"graph_nodes"`
	DB         string `json:"db"`
}

// PublicConfigResponse is the body of GET /api/config. It carries only what
// a browser client needs before authenticating.
type PublicConfigResponse struct {
	AuthProvider string `json:"auth_provider"`
	OIDCIssuer   string `json:"oidc_issuer,omitempty"`
}

// LoginResponse is the body of a successful POST /auth/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SnapshotResponse is the body of POST /admin/snapshot.
type SnapshotResponse struct {
	Status    string    `json:"status"`
	ItemCount int       `json:"item_count"`
	SavedAt   time.Time `json:"saved_at"`
}
