// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/graphrec/config.yaml",
	"/etc/graphrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "GRAPHREC_CONFIG_PATH"

// envPrefix scopes which environment variables are considered for overrides.
const envPrefix = "GRAPHREC_"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults from defaultConfig()
//  2. Config File: optional YAML config file (if one exists)
//  3. Environment Variables: GRAPHREC_* overrides any setting
//
// The merged configuration is validated before being returned; an invalid
// configuration is a startup error, never a partially-applied one.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// GRAPHREC_HTTP_PORT -> server.port, GRAPHREC_CACHE_TTL -> cache.ttl, etc.
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices when set from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps GRAPHREC_* environment variable names to koanf
// config paths. Unmapped names are skipped so that unrelated environment
// variables never pollute the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Server mappings
		"http_host":           "server.host",
		"http_port":           "server.port",
		"read_timeout":        "server.read_timeout",
		"write_timeout":       "server.write_timeout",
		"idle_timeout":        "server.idle_timeout",
		"shutdown_timeout":    "server.shutdown_timeout",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_requests",
		"rate_limit_window":   "server.rate_limit_window",

		// Database mappings
		"db_path":            "database.path",
		"db_memory_limit_mb": "database.memory_limit_mb",
		"db_threads":         "database.threads",

		// Cache mappings
		"cache_backend":          "cache.backend",
		"cache_path":             "cache.path",
		"cache_ttl":              "cache.ttl",
		"cache_breaker_failures": "cache.breaker.failure_threshold",
		"cache_breaker_cooldown": "cache.breaker.cooldown",

		// Engine mappings
		"engine_data_dir":      "engine.data_dir",
		"engine_snapshot_file": "engine.snapshot_file",

		// Recommendation mappings
		"recommend_default_k":         "recommend.default_k",
		"recommend_max_k":             "recommend.max_k",
		"recommend_ppr_extra":         "recommend.ppr_extra",
		"recommend_ppr_walks":         "recommend.ppr_walks",
		"recommend_ppr_hops":          "recommend.ppr_hops",
		"recommend_popularity_margin": "recommend.popularity_margin",
		"recommend_catalog_margin":    "recommend.catalog_margin",

		// Auth mappings
		"auth_provider":       "auth.provider",
		"jwt_secret":          "auth.jwt_secret",
		"token_ttl":           "auth.token_ttl",
		"login_rate_requests": "auth.login_rate_requests",
		"login_rate_window":   "auth.login_rate_window",
		"oidc_issuer":         "auth.oidc.issuer",
		"oidc_client_id":      "auth.oidc.client_id",

		// Events mappings
		"events_enabled":        "events.enabled",
		"events_host":           "events.host",
		"events_port":           "events.port",
		"events_store_dir":      "events.store_dir",
		"events_stream":         "events.stream",
		"events_subject_prefix": "events.subject_prefix",
		"events_max_age":        "events.max_age",
		"events_max_msgs":       "events.max_msgs",
		"events_dedup_window":   "events.dedup_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Shutdown mappings
		"shutdown_save_timeout": "shutdown.save_timeout",
		"log_flush_delay":       "shutdown.log_flush_delay",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped entirely.
	return ""
}
