// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

// Package cache provides a small generic TTL cache.
//
// The dataset catalog keeps fetched descriptors here so that the activity
// check in front of every grouped query does not refetch the same
// descriptor on each page change.
//
//	c := cache.New[*models.Dataset](time.Minute)
//	c.Set(id, ds)
//	if ds, ok := c.Get(id); ok {
//	    // fresh descriptor
//	}
package cache
