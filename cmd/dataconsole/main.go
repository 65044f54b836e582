// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

// Package main is the dataconsole command line client.
//
// Every invocation restores the persisted session, runs one command through
// the navigation guard and closes the session again, so a login survives
// across invocations through the session store.
//
// # Configuration
//
// Settings come from built-in defaults, an optional YAML file and
// DATACONSOLE_* environment variables, in that order. The global flags
// below override all three.
//
// # Example Usage
//
//	dataconsole mock &
//	dataconsole login -u admin -p admin
//	dataconsole query visits --group-by region --agg-func sum --agg-field visits
//	dataconsole logout
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
