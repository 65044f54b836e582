// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package session

import (
	"time"

	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
)

// StartTracking enables idle tracking and arms the idle timer.
func (m *Machine) StartTracking() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.tracking = true
	m.armIdleLocked()
}

// ResetIdleTimeout (re)arms the idle timer.
func (m *Machine) ResetIdleTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.armIdleLocked()
}

// HandleInput rearms the idle timer on pointer moves and key presses while
// tracking is on.
func (m *Machine) HandleInput(ev InputEvent) {
	if ev != PointerMove && ev != KeyPress {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tracking || m.closed {
		return
	}
	m.armIdleLocked()
}

// Timers reports which background timers are armed.
func (m *Machine) Timers() (refresh, idle bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshStop != nil, m.idle != nil
}

func (m *Machine) armIdleLocked() {
	if m.idle != nil {
		m.idle.Stop()
	}
	m.idleGen++
	gen := m.idleGen
	m.idle = time.AfterFunc(m.cfg.IdleTimeout, func() { m.onIdle(gen) })
}

// onIdle logs out and sends the user to the login page, keeping the current
// path as the post-login target. Stale timers are ignored.
func (m *Machine) onIdle(gen uint64) {
	m.mu.Lock()
	if gen != m.idleGen || m.closed {
		m.mu.Unlock()
		return
	}
	nav := m.nav
	m.mu.Unlock()

	logging.Info().Dur("idle_timeout", m.cfg.IdleTimeout).Msg("Session idle, logging out")
	metrics.RecordSessionEvent("idle_timeout")
	m.logout(m.bg, "idle")

	if nav != nil {
		nav.ForceLogin(nav.CurrentPath())
	}
}

func (m *Machine) startRefreshLocked() {
	if m.closed {
		return
	}
	if m.refreshStop != nil {
		close(m.refreshStop)
	}
	stop := make(chan struct{})
	m.refreshStop = stop
	m.wg.Add(1)
	go m.refreshLoop(stop, m.cfg.RefreshInterval)
}

func (m *Machine) refreshLoop(stop <-chan struct{}, every time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-m.bg.Done():
			return
		case <-ticker.C:
			m.Refresh(m.bg)
		}
	}
}

// stopTimersLocked cancels both timers. It does not wait for the refresh
// goroutine, which may be the caller.
func (m *Machine) stopTimersLocked() {
	if m.refreshStop != nil {
		close(m.refreshStop)
		m.refreshStop = nil
	}
	if m.idle != nil {
		m.idle.Stop()
		m.idle = nil
	}
	m.idleGen++
}
