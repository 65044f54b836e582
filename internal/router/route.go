// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package router

import "net/url"

// Route names known to the guard.
const (
	Home               = "home"
	Login              = "login"
	ForgotPassword     = "forgot-password"
	SetPassword        = "set-password"
	ForcePasswordReset = "force-password-reset"
)

// NextParam carries the post-login target on the login route.
const NextParam = "next"

var paths = map[string]string{
	Home:               "/",
	Login:              "/login",
	ForcePasswordReset: "/login/reset-password",
	ForgotPassword:     "/login/forgot-password",
	SetPassword:        "/login/set-password",
}

// publicPages are reachable without a session.
var publicPages = map[string]bool{
	Login:              true,
	ForgotPassword:     true,
	SetPassword:        true,
	ForcePasswordReset: true,
}

// Route is a navigation target.
type Route struct {
	Name  string
	Path  string
	Query url.Values
}

// Named returns the route registered under name. Unknown names get an
// empty path.
func Named(name string) Route {
	return Route{Name: name, Path: paths[name]}
}

// LoginRoute returns the login route with next as the post-login target.
// An empty next is left out.
func LoginRoute(next string) Route {
	r := Named(Login)
	if next != "" {
		r.Query = url.Values{NextParam: []string{next}}
	}
	return r
}

// FullPath returns the path with its encoded query.
func (r Route) FullPath() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

// Next returns the post-login target carried by a login route.
func (r Route) Next() string {
	return r.Query.Get(NextParam)
}
