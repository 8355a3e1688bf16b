// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"github.com/tomtom215/graphrec/internal/models"
	"github.com/tomtom215/graphrec/internal/websocket"
)

// Health handles GET /api/health. The store ping decides between 200 and
// 503; graph_nodes reports the engine's current item count either way.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:     "online",
		GraphNodes: h.graph.ItemCount(),
		DB:         "Connected",
	}

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Health check store ping failed")
		resp.Status = "degraded"
		resp.DB = "Unavailable"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// ListItems handles GET /items. Public catalog read; the body is a bare
// array of items.
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Catalog read failed")
		respondError(w, http.StatusInternalServerError, "Failed to load catalog")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// PublicConfig handles GET /api/config: the auth settings a browser client
// needs before it can authenticate. Never includes secrets.
func (h *Handlers) PublicConfig(w http.ResponseWriter, _ *http.Request) {
	resp := models.PublicConfigResponse{
		AuthProvider: h.authCfg.Provider,
	}
	if h.authCfg.Provider == "oidc" {
		resp.OIDCIssuer = h.authCfg.OIDC.Issuer
	}

	respondJSON(w, http.StatusOK, resp)
}

// WebSocket handles GET /ws: upgrades the connection and subscribes the
// client to the live activity feed.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkWSOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	websocket.NewClient(h.hub, conn).Start()
}

// checkWSOrigin applies the CORS origin list to WebSocket upgrades. Requests
// without an Origin header (non-browser clients) are always allowed.
func (h *Handlers) checkWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.corsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
