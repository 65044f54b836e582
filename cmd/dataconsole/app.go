// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/dataconsole/internal/api"
	"github.com/tomtom215/dataconsole/internal/config"
	"github.com/tomtom215/dataconsole/internal/dataset"
	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/query"
	"github.com/tomtom215/dataconsole/internal/router"
	"github.com/tomtom215/dataconsole/internal/session"
)

var (
	_ session.Backend       = (*api.Client)(nil)
	_ dataset.Fetcher       = (*api.Client)(nil)
	_ query.Backend         = (*api.Client)(nil)
	_ query.ActivityChecker = (*dataset.Catalog)(nil)
)

// errNotLoggedIn is returned when a command needs a session and the guard
// sent it to the login page.
var errNotLoggedIn = errors.New(`not logged in; run "dataconsole login"`)

// errPasswordExpired is returned when the guard forces a password reset.
var errPasswordExpired = errors.New(`password expired; run "dataconsole password change"`)

// app is the wired client for one invocation.
type app struct {
	cfg      *config.Config
	client   *api.Client
	store    session.Store
	session  *session.Machine
	router   *router.Router
	catalog  *dataset.Catalog
	executor *query.Executor
}

// openApp wires the client stack and restores the persisted session. A
// persisted session that cannot be decoded is discarded.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := session.OpenStore(cfg.Session.Store, cfg.Session.StorePath)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.API)
	m := session.New(client, session.Config{
		RefreshInterval: cfg.Session.RefreshInterval,
		IdleTimeout:     cfg.Session.IdleTimeout,
		PasswordMaxAge:  cfg.Session.PasswordMaxAge,
		StoreKey:        cfg.Session.StoreKey,
	}, session.WithStore(store))

	r := router.New(router.NewGuard(m, router.DefaultRules()))
	m.SetNavigator(r)

	if err := m.Hydrate(ctx); err != nil {
		logging.Warn().Err(err).Msg("Discarding unreadable session state")
	}

	catalog := dataset.NewCatalog(client, cfg.API.DatasetCacheTTL)
	return &app{
		cfg:      cfg,
		client:   client,
		store:    store,
		session:  m,
		router:   r,
		catalog:  catalog,
		executor: query.NewExecutor(client, catalog),
	}, nil
}

// Close stops the session timers and closes the store. The session itself
// stays persisted.
func (a *app) Close() {
	a.session.Close()
	if err := a.store.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close session store")
	}
}

// navigate pushes to through the guard and fails unless the navigation ends
// there.
func (a *app) navigate(ctx context.Context, to router.Route) error {
	got, err := a.router.Push(ctx, to)
	if err != nil {
		return err
	}
	switch {
	case got.FullPath() == to.FullPath():
		return nil
	case got.Name == router.Login:
		return errNotLoggedIn
	case got.Name == router.ForcePasswordReset:
		return errPasswordExpired
	default:
		return fmt.Errorf("not permitted to open %s", to.Name)
	}
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, opts *rootOptions, fn func(*app) error) error {
	a, err := openApp(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
