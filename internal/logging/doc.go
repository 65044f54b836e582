// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

// Package logging provides centralized zerolog-based logging for Dataconsole.
//
// A single global logger is configured once at startup and shared by the API
// client, the session machine and the CLI:
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	})
//
//	logging.Info().Str("dataset", id).Msg("Query issued")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Refresh failed")
//
// # Configuration
//
// The CLI maps these from the logging section of the config file or from
// environment variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// # Session events
//
// SessionLogger records authentication lifecycle events (login, refresh,
// logout, idle timeout) with tokens and usernames masked.
//
// Always terminate log chains with .Msg() or .Send().
package logging
