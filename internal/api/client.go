// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/dataconsole/internal/config"
	"github.com/tomtom215/dataconsole/internal/metrics"
)

const defaultBreakerName = "backend-api"

// Client talks to the analytics backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*response]
	name    string
	maxBody int64

	mu      sync.RWMutex
	headers http.Header
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBreakerName names the circuit breaker in logs and metrics.
func WithBreakerName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// WithMaxResponseBody caps response bodies at n bytes. A larger body fails
// the request instead of being truncated.
func WithMaxResponseBody(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// New returns a client for cfg.BaseURL.
func New(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		name:    defaultBreakerName,
		maxBody: maxResponseBody,
		headers: defaultHeaders(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(c.name, cfg)
	return c
}

func defaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json")
	h.Set("User-Agent", "dataconsole")
	return h
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAuthorization installs the bearer token sent with every request.
func (c *Client) SetAuthorization(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set("Authorization", "Bearer "+token)
}

// ClearAuthorization resets the default headers.
func (c *Client) ClearAuthorization() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = defaultHeaders()
}

// Authorization returns the installed bearer token, or "".
func (c *Client) Authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimPrefix(c.headers.Get("Authorization"), "Bearer ")
}

// BreakerState returns the circuit breaker state: closed, half-open or open.
func (c *Client) BreakerState() string {
	return stateToString(c.breaker.State())
}

func (c *Client) headerSnapshot() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// wait blocks until the rate limiter admits a request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	start := time.Now()
	err := c.limiter.Wait(ctx)
	metrics.APIRateLimitWaits.Observe(time.Since(start).Seconds())
	return err
}
