// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/tomtom215/dataconsole/internal/config"
	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
	"github.com/tomtom215/dataconsole/internal/mockapi"
	"github.com/tomtom215/dataconsole/internal/supervisor"
	"github.com/tomtom215/dataconsole/internal/supervisor/services"
)

const (
	serverShutdownTimeout = 10 * time.Second
	readHeaderTimeout     = 5 * time.Second
)

func newMockCmd(opts *rootOptions) *cobra.Command {
	var addr, username, password, otpCode string

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an in-memory analytics backend",
		Long: `Serve an in-memory analytics backend with a seeded admin account, a
"viewer" account and two demo datasets ("visits" and the inactive
"archive"). With metrics enabled, Prometheus metrics are served on the
metrics address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mc := opts.cfg.Mock
			flags := cmd.Flags()
			if flags.Changed("addr") {
				mc.Addr = addr
			}
			if flags.Changed("username") {
				mc.Username = username
			}
			if flags.Changed("password") {
				mc.Password = password
			}
			if flags.Changed("otp-code") {
				mc.OTPCode = otpCode
			}
			return runMock(cmd.Context(), mc, opts.cfg.Metrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&otpCode, "otp-code", "", "accepted one-time password")
	return cmd
}

// runMock serves the mock backend, and metrics when enabled, until ctx is
// canceled.
func runMock(ctx context.Context, mc config.MockConfig, mcfg config.MetricsConfig) error {
	backend, err := mockapi.New(mc)
	if err != nil {
		return fmt.Errorf("create mock backend: %w", err)
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddBackendService(services.NewHTTPServerService("mock-api", mc.Addr, &http.Server{
		Handler:           backend,
		ReadHeaderTimeout: readHeaderTimeout,
	}, serverShutdownTimeout))

	if mcfg.Enabled {
		mux := chi.NewRouter()
		mux.Handle("/metrics", metrics.Handler())
		tree.AddTelemetryService(services.NewHTTPServerService("metrics", mcfg.Addr, &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		}, serverShutdownTimeout))
	}

	logging.Info().
		Str("addr", mc.Addr).
		Str("username", mc.Username).
		Bool("otp", mc.OTPCode != "").
		Bool("metrics", mcfg.Enabled).
		Msg("Starting mock backend")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Mock backend stopped")
	return nil
}
