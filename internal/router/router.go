// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package router

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/dataconsole/internal/metrics"
	"github.com/tomtom215/dataconsole/internal/session"
)

// maxRedirects bounds the guard chain of a single Push.
const maxRedirects = 8

// ErrRedirectLoop is returned when the guard keeps redirecting.
var ErrRedirectLoop = errors.New("navigation redirect loop")

var _ session.Navigator = (*Router)(nil)

// Router tracks the current route and applies the guard to every Push.
type Router struct {
	guard *Guard

	mu      sync.Mutex
	current Route
}

// New creates a router positioned at home.
func New(g *Guard) *Router {
	return &Router{guard: g, current: Named(Home)}
}

// Push navigates to to, following guard redirects, and returns where the
// navigation ended.
func (r *Router) Push(ctx context.Context, to Route) (Route, error) {
	for i := 0; i < maxRedirects; i++ {
		redirect := r.guard.Before(ctx, to)
		if redirect == nil {
			r.mu.Lock()
			r.current = to
			r.mu.Unlock()
			return to, nil
		}
		metrics.RecordRedirect(redirect.Name)
		to = *redirect
	}
	return r.Current(), ErrRedirectLoop
}

// Current returns the current route.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// CurrentPath returns the current route's full path.
func (r *Router) CurrentPath() string {
	return r.Current().FullPath()
}

// ForceLogin moves to the login page without consulting the guard.
func (r *Router) ForceLogin(next string) {
	metrics.RecordRedirect(Login)
	r.mu.Lock()
	r.current = LoginRoute(next)
	r.mu.Unlock()
}
