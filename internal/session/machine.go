// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
	"github.com/tomtom215/dataconsole/internal/models"
)

// Backend is the slice of the REST API the session needs.
type Backend interface {
	Login(ctx context.Context, username, password, otp string) (*models.TokenResponse, error)
	Refresh(ctx context.Context) (*models.TokenResponse, error)
	Logout(ctx context.Context) error
	Self(ctx context.Context) (*models.User, error)
	OTPCheck(ctx context.Context) (*models.OTPCheck, error)
	EnableOTP(ctx context.Context, otp string) error
	DisableOTP(ctx context.Context) error
	DisableUserOTP(ctx context.Context, userID string) error
	GenerateOTP(ctx context.Context) (string, error)
	UpdatePassword(ctx context.Context, password string) error
	ResetPassword(ctx context.Context, token, password string) error
	ForgotPassword(ctx context.Context, username string) error
	Unlock(ctx context.Context, userID string) error
	SetAuthorization(token string)
	ClearAuthorization()
}

// Navigator moves the user to the login page when the idle timer fires.
type Navigator interface {
	CurrentPath() string
	ForceLogin(next string)
}

// Machine is the authentication session. It is safe for concurrent use.
// Network calls are made without holding the state lock; concurrent updates
// resolve last-writer-wins, and failures degrade to logout.
type Machine struct {
	backend Backend
	store   Store
	nav     Navigator
	cfg     Config
	now     func() time.Time
	log     *logging.SessionLogger

	// bg is the context of timer-driven calls; cancelled by Close.
	bg       context.Context
	bgCancel context.CancelFunc
	wg       sync.WaitGroup

	mu          sync.Mutex
	state       State
	pending     int
	tracking    bool
	closed      bool
	refreshStop chan struct{}
	idle        *time.Timer
	idleGen     uint64

	persistMu sync.Mutex
}

// Option configures a Machine.
type Option func(*Machine)

// WithStore persists the session in s.
func WithStore(s Store) Option {
	return func(m *Machine) { m.store = s }
}

// WithNavigator sets the navigator used on idle logout.
func WithNavigator(n Navigator) Option {
	return func(m *Machine) { m.nav = n }
}

// WithClock replaces time.Now for password expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// New creates a logged-out session. Call Hydrate to restore a persisted one
// and Close when done.
func New(backend Backend, cfg Config, opts ...Option) *Machine {
	def := DefaultConfig()
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = def.RefreshInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.PasswordMaxAge <= 0 {
		cfg.PasswordMaxAge = def.PasswordMaxAge
	}
	if cfg.StoreKey == "" {
		cfg.StoreKey = def.StoreKey
	}

	bg, cancel := context.WithCancel(context.Background())
	m := &Machine{
		backend:  backend,
		store:    NewMemoryStore(),
		cfg:      cfg,
		now:      time.Now,
		log:      logging.NewSessionLogger(),
		bg:       bg,
		bgCancel: cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetNavigator sets the navigator after construction. The router and the
// session reference each other, so one of them is wired late.
func (m *Machine) SetNavigator(n Navigator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nav = n
}

// Snapshot returns a copy of the session fields.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status derives the lifecycle state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.pending > 0:
		return Authenticating
	case !m.state.IsAuthenticated && m.state.OTPRequired:
		return OTPPending
	case !m.state.IsAuthenticated:
		return Anonymous
	case m.state.MustChangePassword:
		return PasswordExpired
	default:
		return Authenticated
	}
}

// IsAuthenticated reports whether the session holds a validated token.
func (m *Machine) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsAuthenticated
}

// MustChangePassword reports whether the password is older than the
// configured maximum age.
func (m *Machine) MustChangePassword() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.MustChangePassword
}

// User returns the current user, or nil.
func (m *Machine) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User
}

// HasPermission reports whether a user is present and holds admin or any of
// names. It is evaluated against the current user on every call.
func (m *Machine) HasPermission(names ...string) bool {
	return m.User().HasAny(names...)
}

// Login exchanges credentials for a session. A backend failure is returned
// as is; its message is the backend's detail text. When the account needs a
// one-time password, OTPRequired is set, no session is established and
// ErrOTPRequired is returned.
func (m *Machine) Login(ctx context.Context, username, password, otp string) error {
	m.begin()
	defer m.end()

	resp, err := m.backend.Login(ctx, username, password, otp)
	if err != nil {
		m.log.LogLoginFailure(username, err.Error())
		metrics.RecordSessionEvent("login_failed")
		return err
	}
	if resp.OTPRequired {
		m.mutate(func(s *State) { s.OTPRequired = true })
		m.log.LogOTPRequired(username)
		metrics.RecordSessionEvent("otp_required")
		return ErrOTPRequired
	}

	if err := m.update(ctx, resp.AccessToken); err != nil {
		m.log.LogLoginFailure(username, err.Error())
		metrics.RecordSessionEvent("login_failed")
		return err
	}

	m.StartTracking()
	m.mu.Lock()
	m.startRefreshLocked()
	m.mu.Unlock()

	m.log.LogLoginSuccess(resp.UserID, username)
	metrics.RecordSessionEvent("login")
	return nil
}

// update installs token and loads the user behind it. On failure the
// session is left unauthenticated and the error wraps ErrAuthExpired.
func (m *Machine) update(ctx context.Context, token string) error {
	m.mutate(func(s *State) { s.AccessToken = token })
	m.backend.SetAuthorization(token)

	fail := func(cause error) error {
		m.mutate(func(s *State) { s.IsAuthenticated = false })
		return fmt.Errorf("%w: %w", ErrAuthExpired, cause)
	}

	user, err := m.backend.Self(ctx)
	if err != nil {
		return fail(err)
	}
	m.mutate(func(s *State) {
		s.User = user
		s.IsAuthenticated = true
	})

	otp, err := m.backend.OTPCheck(ctx)
	if err != nil {
		return fail(err)
	}
	expired := user.PasswordExpired(m.now(), m.cfg.PasswordMaxAge)
	m.mutate(func(s *State) {
		s.OTPRequired = otp.OTPEnabled
		s.MustChangePassword = expired
	})
	return nil
}

// Refresh renews the token silently. Any failure logs the session out and
// reports false; Refresh never returns an error.
func (m *Machine) Refresh(ctx context.Context) bool {
	resp, err := m.backend.Refresh(ctx)
	if err == nil {
		err = m.update(ctx, resp.AccessToken)
	}
	userID := m.userID()
	if err != nil && m.isClosed() {
		logging.Ctx(ctx).Debug().Err(err).Msg("Refresh interrupted by close, keeping session")
		return false
	}
	if err != nil {
		m.log.LogTokenRefresh(userID, false, err.Error())
		metrics.RecordRefresh(false)
		m.logout(ctx, "refresh_failed")
		return false
	}
	m.log.LogTokenRefresh(userID, true, "")
	metrics.RecordRefresh(true)
	return true
}

// Logout ends the session. It is safe to call when already logged out. The
// backend is notified only when the session was authenticated, and a failed
// notification is ignored.
func (m *Machine) Logout(ctx context.Context) {
	m.logout(ctx, "user")
}

func (m *Machine) logout(ctx context.Context, reason string) {
	m.mu.Lock()
	m.stopTimersLocked()
	m.tracking = false
	wasAuthenticated := m.state.IsAuthenticated
	userID := ""
	if m.state.User != nil {
		userID = m.state.User.ID
	}
	m.mu.Unlock()

	if wasAuthenticated {
		if err := m.backend.Logout(ctx); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("Backend logout failed, ignoring")
		}
	}

	m.mutate(func(s *State) { *s = State{} })
	m.backend.ClearAuthorization()

	m.log.LogLogout(userID, reason)
	metrics.RecordSessionEvent("logout")
}

// Close stops both timers and waits for the refresh goroutine to exit. The
// backend is not contacted and the persisted session is kept: a refresh cut
// short by Close neither logs out nor writes to the store.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	m.tracking = false
	m.stopTimersLocked()
	m.mu.Unlock()

	m.bgCancel()
	m.wg.Wait()
}

func (m *Machine) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Machine) begin() {
	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
}

func (m *Machine) end() {
	m.mu.Lock()
	m.pending--
	m.mu.Unlock()
}

func (m *Machine) userID() string {
	if u := m.User(); u != nil {
		return u.ID
	}
	return ""
}

// mutate applies fn under the state lock and persists the result.
func (m *Machine) mutate(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	m.mu.Unlock()
	m.persist()
}
