// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/graphrec/internal/auth"
	"github.com/tomtom215/graphrec/internal/config"
	"github.com/tomtom215/graphrec/internal/events"
	"github.com/tomtom215/graphrec/internal/logging"
	"github.com/tomtom215/graphrec/internal/models"
	"github.com/tomtom215/graphrec/internal/websocket"
)

// RecommendService is the recommendation core the handlers drive. Implemented
// by *recommend.Service.
type RecommendService interface {
	Recommend(ctx context.Context, userID int64, rawK int, algo string) (*models.RecommendationResponse, error)
	AddInteraction(ctx context.Context, userID, itemID int64) (bool, error)
	RemoveInteraction(ctx context.Context, userID, itemID int64) (bool, error)
	SetPreferences(ctx context.Context, userID int64, genreNames []string) ([]int, error)
}

// Store is the read-side slice of the database the handlers need.
// Implemented by *database.DB.
type Store interface {
	Ping(ctx context.Context) error
	ListItems(ctx context.Context) ([]models.Item, error)
	GetUserInteractions(ctx context.Context, userID int64) ([]models.Interaction, error)
	GetPreferenceGenreIDs(ctx context.Context, userID int64) ([]int, error)
	GetRecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// SnapshotSaver forces an engine checkpoint. Implemented by
// *recommend.StateManager.
type SnapshotSaver interface {
	SaveNow(ctx context.Context) (int, error)
}

// GraphStats exposes the engine counters the health endpoint reports.
// Implemented by *recommend.EngineAdapter.
type GraphStats interface {
	ItemCount() int
}

// Authenticator verifies credentials and issues tokens. Implemented by
// *auth.LocalAuthenticator; nil when the oidc provider is active.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
}

// Handlers holds every HTTP handler and its dependencies.
type Handlers struct {
	recommender   RecommendService
	store         Store
	snapshots     SnapshotSaver
	graph         GraphStats
	publisher     events.Publisher
	hub           *websocket.Hub
	authenticator Authenticator
	authCfg       *config.AuthConfig
	corsOrigins   []string
	logger        zerolog.Logger
	security      *logging.SecurityLogger
}

// New wires the handler set. authenticator is nil for the oidc provider; the
// router then leaves /auth/login unregistered.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func New(
	recommender RecommendService,
	store Store,
	snapshots SnapshotSaver,
	graph GraphStats,
	publisher events.Publisher,
	hub *websocket.Hub,
	authenticator Authenticator,
	cfg *config.Config,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		recommender:   recommender,
		store:         store,
		snapshots:     snapshots,
		graph:         graph,
		publisher:     publisher,
		hub:           hub,
		authenticator: authenticator,
		authCfg:       &cfg.Auth,
		corsOrigins:   cfg.Server.CORSOrigins,
		logger:        logger.With().Str("component", "api").Logger(),
		security:      logging.NewSecurityLoggerWithLogger(logger),
	}
}

// userIDParam parses the {user_id} path segment. On failure it writes a 400
// and returns false.
func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "user_id")

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid user_id")
		return 0, false
	}

	return userID, true
}

// requireOwnership checks that the authenticated caller's graph user id
// matches the target of a mutation. The 403 fires before any store, engine,
// or cache write.
func (h *Handlers) requireOwnership(w http.ResponseWriter, r *http.Request, targetUserID int64, msg string) bool {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return false
	}

	if identity.Profile.UserID != targetUserID {
		h.logger.Warn().
			Int64("caller", identity.Profile.UserID).
			Int64("target", targetUserID).
			Str("path", r.URL.Path).
			Msg("Ownership violation rejected")
		respondError(w, http.StatusForbidden, msg)
		return false
	}

	return true
}
