// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package query

import (
	"github.com/tomtom215/dataconsole/internal/models"
)

// Query is the payload posted to the dataset query endpoint.
type Query = models.DatasetQuery

// AggregateRows is the editor's row-count pseudo-function. It is sent to the
// backend as "count".
const AggregateRows = "rows"

// Options are the paging, sorting and grouping choices of a query editor.
// Zero RowsPerPage and Page mean unset.
type Options struct {
	RowsPerPage int
	Page        int // 1-based
	SortBy      *string
	Descending  bool

	// GroupBy is nil, a string, or a list of strings ([]string or []any).
	// Any other value leaves the query ungrouped.
	GroupBy           any
	AggregateFunction string
	AggregateField    string

	// Aggregate is copied through verbatim on grouped queries.
	Aggregate any
}

// groupFields coerces Options.GroupBy to a field list. ok is false when the
// value does not request grouping.
func groupFields(v any) (fields []string, ok bool) {
	switch g := v.(type) {
	case string:
		return []string{g}, true
	case []string:
		return append([]string{}, g...), true
	case []any:
		fields = make([]string, 0, len(g))
		for _, e := range g {
			s, isString := e.(string)
			if !isString {
				return nil, false
			}
			fields = append(fields, s)
		}
		return fields, true
	default:
		return nil, false
	}
}

// Grouped reports whether opts request a grouped query.
func (o Options) Grouped() bool {
	_, ok := groupFields(o.GroupBy)
	return ok
}

// Build returns a copy of base with opts applied. base is never modified.
//
//   - RowsPerPage sets limit; with Page it also sets offset = RowsPerPage*(Page-1)
//   - SortBy replaces order_by with a single [field, asc|desc] pair
//   - a grouping request sets group_by with one aggregator keyed by
//     AggregateFunction, and copies Aggregate through when present
func Build(base Query, opts Options) Query {
	q := base.Clone()

	if opts.RowsPerPage != 0 {
		limit := opts.RowsPerPage
		q.Limit = &limit
		if opts.Page != 0 {
			offset := opts.RowsPerPage * (opts.Page - 1)
			q.Offset = &offset
		}
	}

	if opts.SortBy != nil {
		dir := models.OrderAsc
		if opts.Descending {
			dir = models.OrderDesc
		}
		q.OrderBy = [][]string{{*opts.SortBy, string(dir)}}
	}

	if fields, ok := groupFields(opts.GroupBy); ok {
		function := opts.AggregateFunction
		if function == AggregateRows {
			function = "count"
		}
		q.GroupBy = &models.GroupBy{
			Fields: fields,
			Aggregators: map[string]models.Aggregator{
				opts.AggregateFunction: {Field: opts.AggregateField, Function: function},
			},
		}
		if opts.Aggregate != nil {
			q.Aggregate = opts.Aggregate
		}
	}

	return q
}
