// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package main is the entry point for the GraphRec server.
//
// GraphRec serves per-user media recommendations from an in-memory
// interaction graph, backed by DuckDB as the store of record. The server
// initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML, environment)
//  2. Database: DuckDB store of record, migrated and catalog-seeded
//  3. Graph engine: in-memory bipartite graph behind the capability adapter
//  4. Response cache: BadgerDB with circuit breaker, or in-memory
//  5. Engine state: snapshot load plus reconciliation against the store
//  6. Authentication: local JWT or OIDC verification, Casbin authorization
//  7. Events (optional): embedded NATS JetStream activity pipeline
//  8. HTTP server: Chi router under the suture supervisor tree
//
// Shutdown on SIGINT/SIGTERM cancels the supervisor tree, persists a final
// engine snapshot under a bounded timeout, closes the event pipeline, and
// sleeps briefly so log shippers can drain.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/graphrec/internal/api"
	"github.com/tomtom215/graphrec/internal/auth"
	"github.com/tomtom215/graphrec/internal/authz"
	"github.com/tomtom215/graphrec/internal/cache"
	"github.com/tomtom215/graphrec/internal/config"
	"github.com/tomtom215/graphrec/internal/database"
	"github.com/tomtom215/graphrec/internal/engine"
	"github.com/tomtom215/graphrec/internal/events"
	"github.com/tomtom215/graphrec/internal/logging"
	"github.com/tomtom215/graphrec/internal/recommend"
	"github.com/tomtom215/graphrec/internal/supervisor"
	"github.com/tomtom215/graphrec/internal/supervisor/services"
	ws "github.com/tomtom215/graphrec/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_provider", cfg.Auth.Provider).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting GraphRec")

	// Store of record. Unreachable at startup is fatal.
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Graph engine behind the capability-probed adapter.
	eng := engine.New(engine.DefaultConfig(), logging.WithComponent("engine"))
	adapter := recommend.NewEngineAdapter(eng, logging.Logger())

	// Response cache. An unavailable backend degrades to memory; cache
	// problems never take the service down.
	responseCache, err := cache.New(cfg.Cache, logging.Logger())
	if err != nil {
		logging.Warn().Err(err).Msg("Cache backend unavailable, falling back to memory")
		responseCache = cache.NewMemoryStore(cfg.Cache.TTL, logging.Logger())
	}
	defer func() {
		if err := responseCache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	recCfg := &recommend.Config{
		DefaultK:         cfg.Recommend.DefaultK,
		MaxK:             cfg.Recommend.MaxK,
		PPRExtra:         cfg.Recommend.PPRExtra,
		PPRWalks:         cfg.Recommend.PPRWalks,
		PPRHops:          cfg.Recommend.PPRHops,
		PopularityMargin: cfg.Recommend.PopularityMargin,
		CatalogMargin:    cfg.Recommend.CatalogMargin,
	}
	if err := recCfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid recommendation configuration")
	}

	aggregator := recommend.NewAggregator(adapter, db, recCfg, logging.Logger())
	recommender := recommend.NewService(aggregator, adapter, db, db, responseCache, recCfg, logging.Logger())

	stateManager, err := recommend.NewStateManager(adapter, db, cfg.Engine.DataDir, cfg.Engine.SnapshotFile, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create state manager")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed the catalog, restore the snapshot, reconcile against the store.
	if err := stateManager.Startup(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize engine state")
	}
	logging.Info().Int("items", adapter.ItemCount()).Msg("Engine state ready")

	// Authentication and authorization.
	verifier, err := auth.NewVerifier(ctx, cfg.Auth, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token verifier")
	}

	// OIDC subjects are external, so their profiles auto-create on first
	// use; local users are pre-bound to profiles at startup instead.
	resolver := auth.NewProfileResolver(db, cfg.Auth.Provider == auth.ProviderOIDC, logging.Logger())
	authMW := auth.NewMiddleware(verifier, resolver, logging.Logger())

	var authenticator api.Authenticator
	var loginLimiter *auth.RateLimiter
	if cfg.Auth.Provider == auth.ProviderLocal || cfg.Auth.Provider == "" {
		jwtManager, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}

		localAuth := auth.NewLocalAuthenticator(cfg.Auth.Users, jwtManager, logging.Logger())
		if err := localAuth.SeedProfiles(ctx, db); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed user profiles")
		}
		authenticator = localAuth

		loginLimiter = auth.NewRateLimiter(cfg.Auth.LoginRateReqs, cfg.Auth.LoginRateWindow)
		defer loginLimiter.Stop()

		logging.Info().Int("users", len(cfg.Auth.Users)).Msg("Local authentication enabled")
	} else {
		logging.Info().Str("issuer", cfg.Auth.OIDC.Issuer).Msg("OIDC authentication enabled")
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	authzMW := authz.NewMiddleware(enforcer, logging.Logger())

	// WebSocket hub for the live activity feed.
	wsHub := ws.NewHub()

	// Activity event pipeline: embedded NATS JetStream when enabled, a
	// no-op publisher otherwise.
	pipeline, err := events.NewPipeline(ctx, cfg.Events, db, wsHub, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event pipeline")
	}
	if cfg.Events.Enabled {
		logging.Info().Str("stream", cfg.Events.Stream).Msg("Event pipeline started")
	}

	// Supervisor tree.
	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if consumer := pipeline.Consumer(); consumer != nil {
		tree.AddDataService(services.NewActivityConsumerService(consumer))
		logging.Info().Msg("Activity consumer added to supervisor tree")
	}
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))

	handlers := api.New(recommender, db, stateManager, adapter, pipeline.Publisher(), wsHub, authenticator, cfg, logging.Logger())
	router := api.NewRouter(handlers, authMW, authzMW, loginLimiter, &cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	// Final engine snapshot, bounded so a wedged store cannot hang exit.
	saveCtx, saveCancel := context.WithTimeout(context.Background(), cfg.Shutdown.SaveTimeout)
	if err := stateManager.Shutdown(saveCtx); err != nil {
		logging.Error().Err(err).Msg("Final snapshot save failed")
	}
	saveCancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	pipeline.Close(closeCtx)
	closeCancel()

	logging.Info().Msg("Application stopped gracefully")
	time.Sleep(cfg.Shutdown.LogFlushDelay)
}
