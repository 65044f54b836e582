// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package supervisor runs the servers started by "dataconsole mock" under a
suture supervision tree.

	root
	├── backend-layer    mock analytics API
	└── telemetry-layer  Prometheus /metrics

A crashing service is restarted with backoff by its layer supervisor and
does not take the other layer down. Supervisor events are logged through
sutureslog, which is bridged onto zerolog by logging.NewSlogLogger.

Usage Example:

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddBackendService(services.NewHTTPServerService("mock-api", "127.0.0.1:8000", srv, 10*time.Second))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
