// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

// Package router is the navigation guard in front of the console's pages.
// Every Push refreshes the session, then sends unauthenticated users to the
// login page, users with an expired password to the reset page, and users
// without a route's permission back home. Router implements
// session.Navigator so an idle logout can force the login page.
package router
