// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package session implements the authentication session state machine.

A Machine moves between these states:

	Anonymous -> Authenticating -> Authenticated | OTPPending | PasswordExpired
	any state -> Anonymous (Logout, failed Refresh, idle timeout)

Two background timers run while a session is live: a refresh ticker that
renews the token every RefreshInterval, and an idle timer that logs the
user out after IdleTimeout without input. Both are stopped by Logout and
Close.

After every change, {"isAuthenticated","accessToken"} is written to the
Store under Config.StoreKey. Hydrate reads it back on start.

Usage Example:

	m := session.New(client, session.DefaultConfig(), session.WithStore(store))
	defer m.Close()
	if err := m.Hydrate(ctx); err != nil {
	    return err
	}
	if err := m.Login(ctx, user, pass, ""); errors.Is(err, session.ErrOTPRequired) {
	    // prompt for the one-time password and call Login again
	}
*/
package session
