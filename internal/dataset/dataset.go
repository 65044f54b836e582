// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package dataset

import (
	"sort"

	"github.com/tomtom215/dataconsole/internal/filter"
	"github.com/tomtom215/dataconsole/internal/models"
)

// NullLabel labels the null entry of a reference field's value list.
const NullLabel = "__null__"

// Option is one selectable value of a reference field.
type Option struct {
	Label string  `json:"label"`
	Value *string `json:"value"`
}

// ExtractFilters returns the editable per-field filters of the dataset's
// base query.
func ExtractFilters(ds *models.Dataset) filter.Lookup {
	if ds == nil {
		return filter.Lookup{}
	}
	return filter.Extract(ds.BaseQuery.Request)
}

// FieldsLookup indexes the dataset's fields by data field name.
func FieldsLookup(ds *models.Dataset) map[string]models.Field {
	out := make(map[string]models.Field, len(ds.Fields))
	for i := range ds.Fields {
		out[ds.Fields[i].DataFieldName] = ds.Fields[i]
	}
	return out
}

// ReferenceOptions returns the selectable values per field. Region-mapped
// fields offer their mapping keys in sorted order; other reference fields
// offer their value list with null labelled NullLabel. Fields with neither
// are absent.
func ReferenceOptions(ds *models.Dataset) map[string][]Option {
	out := make(map[string][]Option)
	for i := range ds.Fields {
		f := &ds.Fields[i]
		switch {
		case f.HasRegionMap():
			keys := make([]string, 0, len(f.RegionMapMapping))
			for k := range f.RegionMapMapping {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			opts := make([]Option, 0, len(keys))
			for _, k := range keys {
				opts = append(opts, Option{Label: k, Value: &k})
			}
			out[f.DataFieldName] = opts
		case f.IsReference && f.Values != nil:
			opts := make([]Option, 0, len(f.Values))
			for _, v := range f.Values {
				label := NullLabel
				if v != nil {
					label = *v
				}
				opts = append(opts, Option{Label: label, Value: v})
			}
			out[f.DataFieldName] = opts
		}
	}
	return out
}

// SharedFields returns every field name of the dataset in declaration order.
func SharedFields(ds *models.Dataset) []string {
	return ds.FieldNames()
}
