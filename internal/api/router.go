// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/graphrec/internal/auth"
	"github.com/tomtom215/graphrec/internal/authz"
	"github.com/tomtom215/graphrec/internal/config"
	"github.com/tomtom215/graphrec/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler shape so r.Use() accepts it.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the HTTP surface from handlers and middleware.
type Router struct {
	handlers     *Handlers
	authMW       *auth.Middleware
	authzMW      *authz.Middleware
	loginLimiter *auth.RateLimiter
	serverCfg    *config.ServerConfig
}

// NewRouter wires the router. loginLimiter may be nil when the local
// provider is off; /auth/login is then never registered.
func NewRouter(
	handlers *Handlers,
	authMW *auth.Middleware,
	authzMW *authz.Middleware,
	loginLimiter *auth.RateLimiter,
	serverCfg *config.ServerConfig,
) *Router {
	return &Router{
		handlers:     handlers,
		authMW:       authMW,
		authzMW:      authzMW,
		loginLimiter: loginLimiter,
		serverCfg:    serverCfg,
	}
}

// Setup builds the Chi route tree.
func (router *Router) Setup() http.Handler {
	h := router.handlers

	r := chi.NewRouter()

	// Global middleware, in order.
	r.Use(chimiddleware.RealIP)
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.serverCfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	if router.serverCfg.RateLimitReqs > 0 {
		r.Use(httprate.LimitByIP(router.serverCfg.RateLimitReqs, router.serverCfg.RateLimitWindow))
	}

	// Public surface.
	r.Get("/api/health", h.Health)
	r.Get("/api/config", h.PublicConfig)
	r.With(chiMiddleware(middleware.Compression)).Get("/items", h.ListItems)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/ws", h.WebSocket)

	// Login exists only for the local provider, behind its own stricter
	// per-IP limiter.
	if h.authenticator != nil && router.loginLimiter != nil {
		r.With(router.loginLimiter.Limit).Post("/auth/login", h.Login)
	}

	r.Route("/recommend", func(r chi.Router) {
		r.Get("/{user_id}", h.Recommend)
		r.Get("/preferences/{user_id}", h.GetPreferences)
		r.With(router.authMW.RequireAuth).Post("/preferences", h.SetPreferences)
	})

	r.Route("/interaction", func(r chi.Router) {
		r.Get("/{user_id}", h.ListInteractions)
		r.With(router.authMW.RequireAuth).Post("/", h.AddInteraction)
		r.With(router.authMW.RequireAuth).Delete("/", h.RemoveInteraction)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(router.authMW.RequireAuth)
		r.Use(router.authzMW.AuthorizeRequest)
		r.Post("/snapshot", h.ForceSnapshot)
		r.Get("/activity", h.RecentActivity)
	})

	return r
}
