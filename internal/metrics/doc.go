// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package metrics provides Prometheus instrumentation for the console client.

# Overview

The package provides metrics for:
  - Backend API request latency, throughput and in-flight count
  - Client-side rate limiter waits
  - Circuit breaker state transitions
  - Dataset query outcomes (ok, inactive, error) and descriptor cache efficiency
  - Session lifecycle events, refresh results and the authenticated flag
  - Navigation guard redirects

# Metrics Endpoint

When metrics are enabled the CLI serves Handler() at /metrics:

	curl http://localhost:9464/metrics

All metrics are registered on the default registry via promauto and carry the
dataconsole_ prefix.
*/
package metrics
