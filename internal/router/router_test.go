// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package router

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeSession struct {
	refreshOK     bool
	authenticated bool
	mustChange    bool
	perms         map[string]bool
	refreshes     int
	logouts       int
}

func (s *fakeSession) Refresh(context.Context) bool {
	s.refreshes++
	if !s.refreshOK {
		s.authenticated = false
	}
	return s.refreshOK
}

func (s *fakeSession) IsAuthenticated() bool    { return s.authenticated }
func (s *fakeSession) MustChangePassword() bool { return s.mustChange }
func (s *fakeSession) Logout(context.Context) {
	s.logouts++
	s.authenticated = false
}

func (s *fakeSession) HasPermission(names ...string) bool {
	if !s.authenticated {
		return false
	}
	if s.perms["admin"] {
		return true
	}
	for _, n := range names {
		if s.perms[n] {
			return true
		}
	}
	return false
}

func datasetRoute() Route {
	return Route{Name: "dataset", Path: "/data/datasets/d1", Query: url.Values{"tab": {"query"}}}
}

func TestGuard_Before(t *testing.T) {
	t.Parallel()

	loggedIn := func() *fakeSession {
		return &fakeSession{refreshOK: true, authenticated: true, perms: map[string]bool{"read_dataset_all": true}}
	}

	tests := []struct {
		name        string
		session     *fakeSession
		to          Route
		want        *Route
		wantLogouts int
	}{
		{
			name:    "anonymous to protected page",
			session: &fakeSession{},
			to:      datasetRoute(),
			want:    &Route{Name: Login, Path: "/login", Query: url.Values{"next": {"/data/datasets/d1?tab=query"}}},
		},
		{
			name:    "anonymous to home has no next",
			session: &fakeSession{},
			to:      Named(Home),
			want:    &Route{Name: Login, Path: "/login"},
		},
		{
			name:    "anonymous to public page",
			session: &fakeSession{},
			to:      Named(ForgotPassword),
		},
		{
			name:    "stale flag is re-evaluated after refresh",
			session: &fakeSession{authenticated: true},
			to:      datasetRoute(),
			want:    &Route{Name: Login, Path: "/login", Query: url.Values{"next": {"/data/datasets/d1?tab=query"}}},
		},
		{
			name:    "expired password",
			session: &fakeSession{refreshOK: true, authenticated: true, mustChange: true},
			to:      datasetRoute(),
			want:    &Route{Name: ForcePasswordReset, Path: "/login/reset-password"},
		},
		{
			name:    "expired password at reset page",
			session: &fakeSession{refreshOK: true, authenticated: true, mustChange: true},
			to:      Named(ForcePasswordReset),
		},
		{
			name:    "reset page without expired password",
			session: loggedIn(),
			to:      Named(ForcePasswordReset),
			want:    &Route{Name: Home, Path: "/"},
		},
		{
			name:    "permitted",
			session: loggedIn(),
			to:      datasetRoute(),
		},
		{
			name:    "missing permission",
			session: loggedIn(),
			to:      Named("users"),
			want:    &Route{Name: Home, Path: "/"},
		},
		{
			name:    "admin",
			session: &fakeSession{refreshOK: true, authenticated: true, perms: map[string]bool{"admin": true}},
			to:      Named("users"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := NewGuard(tt.session, DefaultRules())
			got := g.Before(context.Background(), tt.to)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Before() mismatch (-want +got):\n%s", diff)
			}
			if tt.session.refreshes != 1 {
				t.Errorf("Refresh called %d times, want 1", tt.session.refreshes)
			}
			if tt.session.logouts != tt.wantLogouts {
				t.Errorf("Logout called %d times, want %d", tt.session.logouts, tt.wantLogouts)
			}
		})
	}
}

func TestGuard_HomeWithoutPermissionLogsOut(t *testing.T) {
	t.Parallel()

	s := &fakeSession{refreshOK: true, authenticated: true, perms: map[string]bool{}}
	g := NewGuard(s, Rules{Home: {"read_dashboards"}})

	got := g.Before(context.Background(), Named(Home))
	if got == nil || got.Name != Login {
		t.Fatalf("Before(home) = %+v, want login", got)
	}
	if s.logouts != 1 || s.authenticated {
		t.Errorf("logouts = %d, authenticated = %v", s.logouts, s.authenticated)
	}
}

func TestRouter_Push(t *testing.T) {
	t.Parallel()

	s := &fakeSession{refreshOK: true, authenticated: true, perms: map[string]bool{"read_dataset_all": true}}
	r := New(NewGuard(s, DefaultRules()))

	if got := r.Current().Name; got != Home {
		t.Errorf("initial route = %q, want home", got)
	}

	got, err := r.Push(context.Background(), datasetRoute())
	if err != nil || got.Name != "dataset" {
		t.Fatalf("Push(dataset) = %+v, %v", got, err)
	}
	if r.CurrentPath() != "/data/datasets/d1?tab=query" {
		t.Errorf("CurrentPath() = %q", r.CurrentPath())
	}

	got, err = r.Push(context.Background(), Named("users"))
	if err != nil || got.Name != Home {
		t.Errorf("Push(users) = %+v, %v; want redirect home", got, err)
	}

	s.refreshOK = false
	got, err = r.Push(context.Background(), datasetRoute())
	if err != nil || got.Name != Login || got.Next() != "/data/datasets/d1?tab=query" {
		t.Errorf("Push after session loss = %+v, %v", got, err)
	}
}

type loopSession struct{ fakeSession }

func (s *loopSession) MustChangePassword() bool { return true }

func TestRouter_RedirectLoop(t *testing.T) {
	t.Parallel()

	// An expired password redirects to the reset page, which the rules
	// then send home, which is redirected back to the reset page.
	s := &loopSession{fakeSession{refreshOK: true, authenticated: true}}
	r := New(NewGuard(s, Rules{ForcePasswordReset: {"nobody"}}))

	_, err := r.Push(context.Background(), Named(Home))
	if !errors.Is(err, ErrRedirectLoop) {
		t.Errorf("Push() error = %v, want ErrRedirectLoop", err)
	}
}

func TestRouter_ForceLogin(t *testing.T) {
	t.Parallel()

	r := New(NewGuard(&fakeSession{}, nil))
	r.ForceLogin("/data/datasets?page=2")

	cur := r.Current()
	if cur.Name != Login || cur.Next() != "/data/datasets?page=2" {
		t.Errorf("Current() = %+v", cur)
	}
	if got, want := cur.FullPath(), "/login?next=%2Fdata%2Fdatasets%3Fpage%3D2"; got != want {
		t.Errorf("FullPath() = %q, want %q", got, want)
	}
}
