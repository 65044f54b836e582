// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/dataconsole/internal/config"
	"github.com/tomtom215/dataconsole/internal/logging"
)

// rootOptions holds the global flags and the configuration they produce.
type rootOptions struct {
	configPath string
	baseURL    string
	store      string
	storePath  string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dataconsole",
		Short: "Query analytics datasets from the command line",
		Long: `dataconsole logs in to an analytics backend, keeps the session between
invocations and runs dataset queries and visualization setup against it.

Run "dataconsole mock" to start an in-memory backend for local use.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default: $DATACONSOLE_CONFIG or ./config.yaml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "backend base URL")
	flags.StringVar(&opts.store, "store", "", "session store: memory or badger")
	flags.StringVar(&opts.storePath, "store-path", "", "badger session store directory")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newDatasetCmd(opts),
		newQueryCmd(opts),
		newVizCmd(opts),
		newPasswordCmd(opts),
		newOTPCmd(opts),
		newUnlockCmd(opts),
		newMockCmd(opts),
	)
	return cmd
}

// load reads the configuration, applies flag overrides and initializes
// logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.API.BaseURL = o.baseURL
	}
	if flags.Changed("store") {
		cfg.Session.Store = o.store
	}
	if flags.Changed("store-path") {
		cfg.Session.StorePath = o.storePath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logging.Init(cfg.LoggerConfig())
	o.cfg = cfg

	// One correlation ID per invocation; the API client forwards it.
	cmdLog := logging.WithComponent("cli").With().Str("command", cmd.CommandPath()).Logger()
	ctx := logging.ContextWithLogger(cmd.Context(), cmdLog)
	cmd.SetContext(logging.ContextWithNewCorrelationID(ctx))
	return nil
}
