// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

// Package config holds all application configuration for GraphRec.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all settings
//  2. Config File: optional YAML file (config.yaml) for persistent settings
//  3. Environment Variables: GRAPHREC_* overrides for any setting
//
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file, and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Engine    EngineConfig    `koanf:"engine"`
	Recommend RecommendConfig `koanf:"recommend"`
	Auth      AuthConfig      `koanf:"auth"`
	Events    EventsConfig    `koanf:"events"`
	Logging   LoggingConfig   `koanf:"logging"`
	Shutdown  ShutdownConfig  `koanf:"shutdown"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - GRAPHREC_HTTP_HOST: Listen address (default: 0.0.0.0)
//   - GRAPHREC_HTTP_PORT: Listen port (default: 8000)
//   - GRAPHREC_CORS_ORIGINS: Comma-separated allowed origins (default: *)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings. An empty Path selects an in-memory
// database, which is useful for tests and throwaway deployments.
type DatabaseConfig struct {
	Path          string `koanf:"path"`
	MemoryLimitMB int    `koanf:"memory_limit_mb"`
	Threads       int    `koanf:"threads"` // 0 = use runtime.NumCPU()
}

// CacheConfig holds recommendation response cache settings.
// Backend "badger" persists entries on disk; "memory" keeps them in-process.
type CacheConfig struct {
	Backend string        `koanf:"backend"` // badger|memory
	Path    string        `koanf:"path"`    // badger directory
	TTL     time.Duration `koanf:"ttl"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker guarding the cache backend.
// After FailureThreshold consecutive backend errors the breaker opens and
// cache traffic short-circuits (miss/no-op) until Cooldown elapses.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	Cooldown         time.Duration `koanf:"cooldown"`
}

// EngineConfig holds graph engine file locations. DataDir is the scratch
// area for snapshot staging; SnapshotFile is the file name within it.
type EngineConfig struct {
	DataDir      string `koanf:"data_dir"`
	SnapshotFile string `koanf:"snapshot_file"`
}

// RecommendConfig tunes the recommendation orchestration layer.
type RecommendConfig struct {
	DefaultK         int `koanf:"default_k"`         // k when the query omits it
	MaxK             int `koanf:"max_k"`             // upper clamp for k
	PPRExtra         int `koanf:"ppr_extra"`         // PPR requests k+extra candidates
	PPRWalks         int `koanf:"ppr_walks"`         // random walk budget
	PPRHops          int `koanf:"ppr_hops"`          // walk hop limit
	PopularityMargin int `koanf:"popularity_margin"` // popularity tier over-fetch
	CatalogMargin    int `koanf:"catalog_margin"`    // catalog tier over-fetch
}

// AuthConfig holds authentication settings.
//
// Provider "local" issues and verifies HS256 JWTs against the configured
// user list. Provider "oidc" verifies bearer tokens against an external
// OIDC issuer; GraphRec never issues tokens in that mode.
type AuthConfig struct {
	Provider        string        `koanf:"provider"` // local|oidc
	JWTSecret       string        `koanf:"jwt_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	Users           []UserConfig  `koanf:"users"`
	OIDC            OIDCConfig    `koanf:"oidc"`
	LoginRateReqs   int           `koanf:"login_rate_requests"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
}

// UserConfig declares a local user. PasswordHash is a bcrypt hash;
// plaintext passwords are never stored. ProfileUUID and UserID pre-bind
// the user to a profiles row so the first login does not race profile
// creation.
type UserConfig struct {
	Username     string `koanf:"username"`
	PasswordHash string `koanf:"password_hash"`
	Role         string `koanf:"role"` // admin|user
	ProfileUUID  string `koanf:"profile_uuid"`
	UserID       int64  `koanf:"user_id"`
	Email        string `koanf:"email"`
}

// OIDCConfig holds settings for the oidc auth provider.
type OIDCConfig struct {
	Issuer   string `koanf:"issuer"`
	ClientID string `koanf:"client_id"`
}

// EventsConfig holds the embedded NATS JetStream activity pipeline settings.
type EventsConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	StoreDir      string        `koanf:"store_dir"`
	MaxMemory     int64         `koanf:"max_memory"` // JetStream memory ceiling in bytes
	MaxStore      int64         `koanf:"max_store"`  // JetStream disk ceiling in bytes
	Stream        string        `koanf:"stream"`
	SubjectPrefix string        `koanf:"subject_prefix"`
	MaxAge        time.Duration `koanf:"max_age"`
	MaxMsgs       int64         `koanf:"max_msgs"`
	DedupWindow   time.Duration `koanf:"dedup_window"`
	Durable       string        `koanf:"durable"`
	QueueGroup    string        `koanf:"queue_group"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json|console
	Caller bool   `koanf:"caller"`
}

// ShutdownConfig holds shutdown sequencing settings. SaveTimeout bounds the
// final snapshot save; LogFlushDelay is the sleep before exit so log
// shippers can drain.
type ShutdownConfig struct {
	SaveTimeout   time.Duration `koanf:"save_timeout"`
	LogFlushDelay time.Duration `koanf:"log_flush_delay"`
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:          "/data/graphrec.duckdb",
			MemoryLimitMB: 512,
			Threads:       0, // 0 = use runtime.NumCPU()
		},
		Cache: CacheConfig{
			Backend: "badger",
			Path:    "/data/cache",
			TTL:     1 * time.Hour,
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				Cooldown:         30 * time.Second,
			},
		},
		Engine: EngineConfig{
			DataDir:      "/data/engine",
			SnapshotFile: "snapshot.gob",
		},
		Recommend: RecommendConfig{
			DefaultK:         5,
			MaxK:             100,
			PPRExtra:         10,
			PPRWalks:         10000,
			PPRHops:          2,
			PopularityMargin: 5,
			CatalogMargin:    10,
		},
		Auth: AuthConfig{
			Provider:        "local",
			JWTSecret:       "",
			TokenTTL:        24 * time.Hour,
			Users:           nil,
			OIDC:            OIDCConfig{},
			LoginRateReqs:   5,
			LoginRateWindow: 1 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:       true,
			Host:          "127.0.0.1",
			Port:          4222,
			StoreDir:      "/data/nats",
			MaxMemory:     256 << 20, // 256MB
			MaxStore:      8 << 30,   // 8GB
			Stream:        "GRAPHREC_ACTIVITY",
			SubjectPrefix: "activity",
			MaxAge:        7 * 24 * time.Hour,
			MaxMsgs:       1_000_000,
			DedupWindow:   2 * time.Minute,
			Durable:       "graphrec-activity",
			QueueGroup:    "activity-workers",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Shutdown: ShutdownConfig{
			SaveTimeout:   30 * time.Second,
			LogFlushDelay: 1 * time.Second,
		},
	}
}
