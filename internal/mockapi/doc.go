// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package mockapi serves an in-memory analytics backend for local use and
end-to-end tests.

It implements the authentication, user and dataset endpoints the console
talks to: bcrypt-checked logins with a five attempt lockout, optional
one-time passwords, HS256 access and reset tokens, and a small query
evaluator over seeded rows that understands the filter grammar, group_by
aggregators, order_by and paging.

Usage Example:

	srv, err := mockapi.New(cfg.Mock)
	if err != nil {
	    return err
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()
*/
package mockapi
