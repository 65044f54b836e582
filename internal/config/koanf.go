// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"dataconsole.yaml",
	"dataconsole.yml",
	"/etc/dataconsole/config.yaml",
	"/etc/dataconsole/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "DATACONSOLE_CONFIG"

// EnvPrefix is the prefix of every environment variable the loader reads.
const EnvPrefix = "DATACONSOLE_"

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:             "http://127.0.0.1:8000",
			Timeout:             30 * time.Second,
			RateLimit:           20,
			RateBurst:           10,
			BreakerFailureRatio: 0.6,
			BreakerMinRequests:  5,
			BreakerTimeout:      30 * time.Second,
			DatasetCacheTTL:     time.Minute,
		},
		Session: SessionConfig{
			RefreshInterval: 10 * time.Minute,
			IdleTimeout:     30 * time.Minute,
			PasswordMaxAge:  90 * 24 * time.Hour,
			Store:           StoreBadger,
			StorePath:       defaultStorePath(),
			StoreKey:        "vims.auth",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9090",
		},
		Mock: MockConfig{
			Addr:      "127.0.0.1:8000",
			Username:  "admin",
			Password:  "admin",
			TokenTTL:  15 * time.Minute,
			RateLimit: 300,
		},
	}
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/dataconsole/session"
	}
	return ".dataconsole/session"
}

// Load builds the configuration from three layers, later ones winning:
//  1. struct defaults
//  2. a YAML file: path if non-empty, else DATACONSOLE_CONFIG, else the first
//     of DefaultConfigPaths that exists
//  3. DATACONSOLE_* environment variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
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

// envMappings maps lower-cased variable names, prefix removed, to koanf paths.
var envMappings = map[string]string{
	"api_url":                   "api.base_url",
	"api_base_url":              "api.base_url",
	"api_timeout":               "api.timeout",
	"api_rate_limit":            "api.rate_limit",
	"api_rate_burst":            "api.rate_burst",
	"api_breaker_failure_ratio": "api.breaker_failure_ratio",
	"api_breaker_min_requests":  "api.breaker_min_requests",
	"api_breaker_timeout":       "api.breaker_timeout",
	"dataset_cache_ttl":         "api.dataset_cache_ttl",

	"session_refresh_interval": "session.refresh_interval",
	"session_idle_timeout":     "session.idle_timeout",
	"password_max_age":         "session.password_max_age",
	"session_store":            "session.store",
	"session_store_path":       "session.store_path",
	"session_store_key":        "session.store_key",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"metrics_enabled": "metrics.enabled",
	"metrics_addr":    "metrics.addr",

	"mock_addr":       "mock.addr",
	"mock_username":   "mock.username",
	"mock_password":   "mock.password",
	"mock_otp_code":   "mock.otp_code",
	"mock_jwt_secret": "mock.jwt_secret",
	"mock_token_ttl":  "mock.token_ttl",
	"mock_rate_limit": "mock.rate_limit",
}

// envTransformFunc maps DATACONSOLE_* variables to koanf paths.
//
// Examples:
//   - DATACONSOLE_API_URL -> api.base_url
//   - DATACONSOLE_SESSION_IDLE_TIMEOUT -> session.idle_timeout
//   - DATACONSOLE_LOG_LEVEL -> logging.level
//
// Unmapped variables, DATACONSOLE_CONFIG included, return "" and are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
