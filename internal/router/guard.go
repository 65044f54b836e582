// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package router

import (
	"context"

	"github.com/tomtom215/dataconsole/internal/logging"
)

// Session is the view of the session the guard needs.
type Session interface {
	Refresh(ctx context.Context) bool
	IsAuthenticated() bool
	MustChangePassword() bool
	HasPermission(names ...string) bool
	Logout(ctx context.Context)
}

// Rules maps a route name to the permissions that admit it. Holding any one
// of them, or admin, is enough.
type Rules map[string][]string

// DefaultRules returns the permission requirements of the console's
// dataset and visualization pages.
func DefaultRules() Rules {
	return Rules{
		"dashboards":     {"read_dashboards"},
		"visualizations": {"read_visualizations"},
		"datasets":       {"read_datasets_shared", "read_datasets_all"},
		"dataset":        {"read_dataset_shared", "read_dataset_all"},
		"dataset-edit":   {"read_dataset_shared", "read_dataset_all", "read_users"},
		"maps":           {"read_maps"},
		"users":          {"read_users"},
		"groups":         {"read_groups"},
	}
}

// Guard decides where a navigation may go.
type Guard struct {
	session Session
	rules   Rules
}

// NewGuard creates a guard over s. A nil rules table admits every
// authenticated navigation.
func NewGuard(s Session, rules Rules) *Guard {
	return &Guard{session: s, rules: rules}
}

// Before returns the route to redirect to, or nil to let the navigation
// through. The session is refreshed first and the decision uses the
// refreshed state.
//
//   - no session, non-public target: login, with next unless the target is home
//   - expired password: force-password-reset
//   - force-password-reset without an expired password: home
//   - missing route permission: home, or logout and login when the target
//     is home itself
func (g *Guard) Before(ctx context.Context, to Route) *Route {
	refreshed := g.session.Refresh(ctx)
	authenticated := g.session.IsAuthenticated()
	log := logging.Ctx(ctx).With().Str("to", to.Name).Logger()

	if !refreshed && !authenticated && !publicPages[to.Name] {
		next := ""
		if to.Name != Home {
			next = to.FullPath()
		}
		r := LoginRoute(next)
		log.Debug().Str("next", next).Msg("Navigation requires a session")
		return &r
	}

	mustChange := g.session.MustChangePassword()
	if authenticated && mustChange && to.Name != ForcePasswordReset {
		r := Named(ForcePasswordReset)
		log.Debug().Msg("Password expired, forcing reset")
		return &r
	}
	if authenticated && !mustChange && to.Name == ForcePasswordReset {
		r := Named(Home)
		return &r
	}

	if required, ok := g.rules[to.Name]; ok && !g.session.HasPermission(required...) {
		if to.Name == Home {
			g.session.Logout(ctx)
			r := Named(Login)
			log.Info().Msg("No permission for home, logging out")
			return &r
		}
		r := Named(Home)
		log.Debug().Strs("required", required).Msg("Missing route permission")
		return &r
	}
	return nil
}
