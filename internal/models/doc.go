// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package models defines the wire structures exchanged with the analytics
backend.

Key Components:

  - Dataset / Field: dataset descriptors fetched from GET /dataset/{id}
  - DatasetQuery: the query payload posted to /dataset/{id}/query
  - QueryResult: the raw query response, plus the synthetic "inactive" result
  - User: the current user profile with its permission map
  - TokenResponse / OTPCheck: authentication responses
  - ErrorBody: the structured error body ({"detail": ...}) returned on failure
  - Timestamp: backend timestamps, which are UTC but usually carry no zone

Descriptors and users are read-only once decoded; nothing in the console
mutates them locally.

Usage Example:

	var ds models.Dataset
	if err := json.Unmarshal(body, &ds); err != nil {
	    return err
	}
	fields := ds.FieldNames()
*/
package models
