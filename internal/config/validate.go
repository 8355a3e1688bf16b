// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the merged configuration is consistent and complete.
// The error messages name the environment variable forms of the offending
// keys so operators can fix them without reading source.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("GRAPHREC_HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive durations")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("GRAPHREC_SHUTDOWN_TIMEOUT must be a positive duration")
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("GRAPHREC_RATE_LIMIT_REQUESTS must not be negative")
	}
	return nil
}

// validateDatabase validates DuckDB configuration. An empty path is valid
// and selects an in-memory database.
func (c *Config) validateDatabase() error {
	if c.Database.MemoryLimitMB < 0 {
		return fmt.Errorf("GRAPHREC_DB_MEMORY_LIMIT_MB must not be negative")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("GRAPHREC_DB_THREADS must not be negative")
	}
	return nil
}

// validCacheBackends defines the allowed response cache backends.
var validCacheBackends = map[string]bool{
	"badger": true,
	"memory": true,
}

// validateCache validates response cache configuration.
func (c *Config) validateCache() error {
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("GRAPHREC_CACHE_BACKEND must be one of: badger, memory")
	}
	if c.Cache.Backend == "badger" && c.Cache.Path == "" {
		return fmt.Errorf("GRAPHREC_CACHE_PATH is required when GRAPHREC_CACHE_BACKEND=badger")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("GRAPHREC_CACHE_TTL must be a positive duration")
	}
	if c.Cache.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("GRAPHREC_CACHE_BREAKER_FAILURES must be at least 1")
	}
	if c.Cache.Breaker.Cooldown <= 0 {
		return fmt.Errorf("GRAPHREC_CACHE_BREAKER_COOLDOWN must be a positive duration")
	}
	return nil
}

// validateRecommend validates recommendation orchestration configuration.
func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultK < 1 {
		return fmt.Errorf("GRAPHREC_RECOMMEND_DEFAULT_K must be at least 1")
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("GRAPHREC_RECOMMEND_MAX_K must be >= GRAPHREC_RECOMMEND_DEFAULT_K")
	}
	if c.Recommend.PPRWalks < 1 {
		return fmt.Errorf("GRAPHREC_RECOMMEND_PPR_WALKS must be at least 1")
	}
	if c.Recommend.PPRHops < 1 {
		return fmt.Errorf("GRAPHREC_RECOMMEND_PPR_HOPS must be at least 1")
	}
	if c.Recommend.PPRExtra < 0 || c.Recommend.PopularityMargin < 0 || c.Recommend.CatalogMargin < 0 {
		return fmt.Errorf("recommend over-fetch margins must not be negative")
	}
	return nil
}

// validAuthProviders defines the allowed authentication providers.
var validAuthProviders = map[string]bool{
	"local": true,
	"oidc":  true,
}

// validUserRoles defines the allowed local user roles.
var validUserRoles = map[string]bool{
	"admin": true,
	"user":  true,
}

// validateAuth validates authentication configuration for the selected provider.
func (c *Config) validateAuth() error {
	if !validAuthProviders[c.Auth.Provider] {
		return fmt.Errorf("GRAPHREC_AUTH_PROVIDER must be one of: local, oidc")
	}

	validators := map[string]func() error{
		"local": c.validateLocalAuth,
		"oidc":  c.validateOIDCAuth,
	}
	return validators[c.Auth.Provider]()
}

// validateLocalAuth validates the local JWT provider configuration.
func (c *Config) validateLocalAuth() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("GRAPHREC_JWT_SECRET is required when GRAPHREC_AUTH_PROVIDER=local")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("GRAPHREC_JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Auth.JWTSecret) {
		return fmt.Errorf("GRAPHREC_JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("GRAPHREC_TOKEN_TTL must be a positive duration")
	}
	if len(c.Auth.Users) == 0 {
		return fmt.Errorf("auth.users must declare at least one user when GRAPHREC_AUTH_PROVIDER=local")
	}

	seen := make(map[string]bool, len(c.Auth.Users))
	for i, u := range c.Auth.Users {
		if u.Username == "" {
			return fmt.Errorf("auth.users[%d].username is required", i)
		}
		if seen[u.Username] {
			return fmt.Errorf("auth.users[%d].username %q is duplicated", i, u.Username)
		}
		seen[u.Username] = true
		if u.PasswordHash == "" {
			return fmt.Errorf("auth.users[%d].password_hash is required (bcrypt hash, never plaintext)", i)
		}
		if !strings.HasPrefix(u.PasswordHash, "$2") {
			return fmt.Errorf("auth.users[%d].password_hash does not look like a bcrypt hash", i)
		}
		if !validUserRoles[u.Role] {
			return fmt.Errorf("auth.users[%d].role must be one of: admin, user", i)
		}
		if u.ProfileUUID == "" {
			return fmt.Errorf("auth.users[%d].profile_uuid is required", i)
		}
		if u.UserID < 1 {
			return fmt.Errorf("auth.users[%d].user_id must be a positive integer", i)
		}
	}
	return nil
}

// validateOIDCAuth validates the oidc provider configuration.
func (c *Config) validateOIDCAuth() error {
	if c.Auth.OIDC.Issuer == "" {
		return fmt.Errorf("GRAPHREC_OIDC_ISSUER is required when GRAPHREC_AUTH_PROVIDER=oidc")
	}
	if err := validateIssuerURL(c.Auth.OIDC.Issuer); err != nil {
		return fmt.Errorf("GRAPHREC_OIDC_ISSUER is invalid: %w", err)
	}
	if c.Auth.OIDC.ClientID == "" {
		return fmt.Errorf("GRAPHREC_OIDC_CLIENT_ID is required when GRAPHREC_AUTH_PROVIDER=oidc")
	}
	return nil
}

// validateEvents validates the activity event pipeline configuration.
func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Port < 1 || c.Events.Port > 65535 {
		return fmt.Errorf("GRAPHREC_EVENTS_PORT must be between 1 and 65535, got %d", c.Events.Port)
	}
	if c.Events.StoreDir == "" {
		return fmt.Errorf("GRAPHREC_EVENTS_STORE_DIR is required when GRAPHREC_EVENTS_ENABLED=true")
	}
	if c.Events.Stream == "" {
		return fmt.Errorf("GRAPHREC_EVENTS_STREAM is required when GRAPHREC_EVENTS_ENABLED=true")
	}
	if c.Events.SubjectPrefix == "" {
		return fmt.Errorf("GRAPHREC_EVENTS_SUBJECT_PREFIX is required when GRAPHREC_EVENTS_ENABLED=true")
	}
	if c.Events.MaxAge <= 0 {
		return fmt.Errorf("GRAPHREC_EVENTS_MAX_AGE must be a positive duration")
	}
	if c.Events.DedupWindow <= 0 {
		return fmt.Errorf("GRAPHREC_EVENTS_DEDUP_WINDOW must be a positive duration")
	}
	if c.Events.Durable == "" {
		return fmt.Errorf("GRAPHREC_EVENTS_DURABLE is required when GRAPHREC_EVENTS_ENABLED=true")
	}
	if c.Events.QueueGroup == "" {
		return fmt.Errorf("GRAPHREC_EVENTS_QUEUE_GROUP is required when GRAPHREC_EVENTS_ENABLED=true")
	}
	return nil
}

// validLogLevels defines the allowed log levels.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("GRAPHREC_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("GRAPHREC_LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateIssuerURL validates that the OIDC issuer URL is properly formatted.
// Supports HTTP/HTTPS with optional paths (e.g. https://auth.example.com/realms/main).
// HTTP is only allowed for localhost (development).
func validateIssuerURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required")
	}

	if parsedURL.Scheme == "http" {
		host := parsedURL.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("http is only allowed for localhost issuers")
		}
	}

	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the operator forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
// This prevents accidental deployment with insecure default credentials.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
