// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
)

// persist writes the durable fields to the store. Writes are serialized so
// the last snapshot taken is the last one saved. A closed machine no longer
// writes.
func (m *Machine) persist() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	rec := persisted{IsAuthenticated: m.state.IsAuthenticated}
	if m.state.AccessToken != "" {
		tok := m.state.AccessToken
		rec.AccessToken = &tok
	}
	m.mu.Unlock()

	metrics.SetAuthenticated(rec.IsAuthenticated)

	data, err := json.Marshal(rec)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to encode session state")
		return
	}
	if err := m.store.Save(m.bg, m.cfg.StoreKey, data); err != nil {
		logging.Warn().Err(err).Str("key", m.cfg.StoreKey).Msg("Failed to persist session state")
	}
}

// Hydrate restores a persisted session. It reinstalls the authorization
// header and, for an authenticated session, re-arms the refresh timer. The
// token is not validated here; the next Refresh does that. A missing entry
// is not an error.
func (m *Machine) Hydrate(ctx context.Context) error {
	data, err := m.store.Load(ctx, m.cfg.StoreKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session %s: %w", m.cfg.StoreKey, err)
	}

	var rec persisted
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode session %s: %w", m.cfg.StoreKey, err)
	}

	m.mu.Lock()
	m.state.IsAuthenticated = rec.IsAuthenticated
	m.state.AccessToken = ""
	if rec.AccessToken != nil {
		m.state.AccessToken = *rec.AccessToken
	}
	token := m.state.AccessToken
	if rec.IsAuthenticated {
		m.startRefreshLocked()
	}
	m.mu.Unlock()

	if token != "" {
		m.backend.SetAuthorization(token)
	} else {
		m.backend.ClearAuthorization()
	}

	metrics.SetAuthenticated(rec.IsAuthenticated)
	metrics.RecordSessionEvent("hydrate")
	m.log.LogHydrated(token, rec.IsAuthenticated)
	return nil
}
