// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package query assembles dataset query payloads and runs them.

Build is pure: it deep-copies the dataset's base query and applies the
editor's paging, sorting and grouping options. Executor adds the backend
side: the activity gate, relative-date resolution and the query call.

	opts := query.Options{RowsPerPage: 10, Page: 3, GroupBy: "state",
	    AggregateFunction: query.AggregateRows, AggregateField: "id"}
	res, err := exec.Execute(ctx, ds.BaseQuery, opts, ds.ID)

A query without a grouping request is sent as a flat query behind the same
activity gate.
*/
package query
