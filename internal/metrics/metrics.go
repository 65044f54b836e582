// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API client metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataconsole_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataconsole_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataconsole_api_active_requests",
			Help: "Current number of in-flight backend API requests",
		},
	)

	APIRateLimitWaits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataconsole_api_rate_limit_wait_seconds",
			Help:    "Time spent waiting on the client-side rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataconsole_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataconsole_circuit_breaker_requests_total",
			Help: "Requests passed through the circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataconsole_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Dataset query metrics
	DatasetQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataconsole_dataset_queries_total",
			Help: "Dataset queries by outcome",
		},
		[]string{"mode", "result"}, // mode: grouped, flat; result: success, inactive, error
	)

	DatasetCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataconsole_dataset_cache_hits_total",
			Help: "Dataset descriptor cache hits",
		},
	)

	DatasetCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataconsole_dataset_cache_misses_total",
			Help: "Dataset descriptor cache misses",
		},
	)

	// Session metrics
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataconsole_session_transitions_total",
			Help: "Session lifecycle events",
		},
		[]string{"event"}, // login, otp_required, refresh, logout, idle_timeout, hydrate
	)

	SessionRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataconsole_session_refreshes_total",
			Help: "Silent token refresh attempts by result",
		},
		[]string{"result"},
	)

	SessionAuthenticated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataconsole_session_authenticated",
			Help: "1 while the session is authenticated",
		},
	)

	// Navigation guard metrics
	NavigationRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataconsole_navigation_redirects_total",
			Help: "Navigations redirected by the guard, by target route",
		},
		[]string{"to"},
	)
)

// RecordAPIRequest records a backend request. A zero status code means the
// request never produced a response.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	APIRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight backend requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDatasetQuery records the outcome of a dataset query.
func RecordDatasetQuery(grouped bool, result string) {
	mode := "flat"
	if grouped {
		mode = "grouped"
	}
	DatasetQueriesTotal.WithLabelValues(mode, result).Inc()
}

// RecordSessionEvent records a session lifecycle event.
func RecordSessionEvent(event string) {
	SessionTransitions.WithLabelValues(event).Inc()
}

// RecordRefresh records a refresh attempt.
func RecordRefresh(success bool) {
	if success {
		SessionRefreshes.WithLabelValues("success").Inc()
		return
	}
	SessionRefreshes.WithLabelValues("failure").Inc()
}

// SetAuthenticated mirrors the session's authenticated flag.
func SetAuthenticated(authenticated bool) {
	if authenticated {
		SessionAuthenticated.Set(1)
		return
	}
	SessionAuthenticated.Set(0)
}

// RecordRedirect records a navigation guard redirect.
func RecordRedirect(to string) {
	NavigationRedirects.WithLabelValues(to).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
