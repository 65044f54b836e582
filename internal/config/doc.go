// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package config loads console configuration with Koanf v2.

Configuration is layered, later sources overriding earlier ones:

 1. Defaults from Default()
 2. A YAML file (--config flag, DATACONSOLE_CONFIG, or DefaultConfigPaths)
 3. DATACONSOLE_* environment variables

Sections:

  - api: backend base URL, timeout, client rate limit, circuit breaker, dataset cache TTL
  - session: refresh interval (10m), idle timeout (30m), password max age (90d),
    persistence store (memory or badger) and its key ("vims.auth")
  - logging: zerolog level, format and caller
  - metrics: Prometheus endpoint
  - mock: the fake backend served by "dataconsole mock"

Example file:

	api:
	  base_url: https://analytics.example.com/api
	  timeout: 15s
	session:
	  store: badger
	  store_path: /var/lib/dataconsole/session
	logging:
	  level: debug

Validation uses go-playground/validator tags plus cross-field checks in
Config.Validate.
*/
package config
