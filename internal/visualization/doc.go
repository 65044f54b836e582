// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package visualization manipulates saved visualization configs.

A Config binds a dataset to per-field filter requests, an optional date
field, and free-form visualization options. The helpers here never mutate
their input: OverrideDate and ConvertLastNBack return deep copies.

Key Components:

  - BuildDefault: starting config for a dataset and the current filters
  - ExtractFilters / ExtractFiltersInto: read the filters back out
  - OverrideDate: replace the date-field request with a start/end range
  - ConvertLastNBack: resolve LAST_N_DAYS_BACK tokens to dates
  - Types, OverlayTypes, AggregationFunctions, DetectionAlgorithms,
    LastNBackOptions: option catalogs for the editor

Projection keys keep their insertion order through encode and decode.
*/
package visualization
