// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

// Package dataset holds helpers over dataset descriptors: field and
// reference-value lookups for filter editors, the shared field list, the
// editable filters of a base query, and a Catalog that caches fetched
// descriptors for the query executor's activity check.
package dataset
