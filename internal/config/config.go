// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/validation"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// Config holds all console configuration.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Session SessionConfig `koanf:"session"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
	Mock    MockConfig    `koanf:"mock"`
}

// APIConfig configures the backend REST client.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,http_url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit is the client-side request budget per second. Zero disables it.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=1"`

	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests" validate:"gte=1"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout" validate:"gt=0"`

	// DatasetCacheTTL bounds how long a fetched descriptor is reused. Zero
	// disables caching.
	DatasetCacheTTL time.Duration `koanf:"dataset_cache_ttl" validate:"gte=0"`
}

// SessionConfig configures the session state machine.
type SessionConfig struct {
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	PasswordMaxAge  time.Duration `koanf:"password_max_age" validate:"gt=0"`
	Store           string        `koanf:"store" validate:"oneof=memory badger"`
	StorePath       string        `koanf:"store_path"`
	StoreKey        string        `koanf:"store_key" validate:"required"`
}

// LoggingConfig configures the global zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"omitempty,hostname_port"`
}

// MockConfig configures the in-process fake backend served by
// "dataconsole mock".
type MockConfig struct {
	Addr      string        `koanf:"addr" validate:"required,hostname_port"`
	Username  string        `koanf:"username" validate:"required"`
	Password  string        `koanf:"password" validate:"required"`
	OTPCode   string        `koanf:"otp_code"`
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"gt=0"`

	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`
}

// LoggerConfig converts the logging section for logging.Init.
func (c *Config) LoggerConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	lc.Output = os.Stderr
	return lc
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := validateBaseURL(c.API.BaseURL); err != nil {
		return err
	}
	if c.Session.Store == StoreBadger && c.Session.StorePath == "" {
		return fmt.Errorf("session.store_path is required when session.store is %q", StoreBadger)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	if c.Session.RefreshInterval >= c.Session.IdleTimeout {
		logging.Warn().
			Dur("refresh_interval", c.Session.RefreshInterval).
			Dur("idle_timeout", c.Session.IdleTimeout).
			Msg("Session refresh interval is not shorter than the idle timeout")
	}
	return nil
}

// validateBaseURL rejects base URLs carrying a query or fragment. A path
// prefix such as /api is allowed.
func validateBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("api.base_url failed to parse: %w", err)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("api.base_url should not contain query parameters, remove: ?%s", u.RawQuery)
	}
	if u.Fragment != "" {
		return fmt.Errorf("api.base_url should not contain a fragment, remove: #%s", u.Fragment)
	}
	return nil
}
