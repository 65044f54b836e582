// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package visualization

import (
	"time"

	"github.com/tomtom215/dataconsole/internal/filter"
	"github.com/tomtom215/dataconsole/internal/models"
	"github.com/tomtom215/dataconsole/internal/reldate"
)

// Config is a saved visualization definition.
type Config struct {
	DatasetID            string        `json:"dataset_id"`
	FilteredSharedFields []string      `json:"dataset_filtered_shared_fields"`
	FieldRequests        filter.Lookup `json:"dataset_field_requests"`
	DateField            *string       `json:"date_field"`
	Options              Options       `json:"visualization_options"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := Config{
		DatasetID:     c.DatasetID,
		FieldRequests: c.FieldRequests.Clone(),
		Options:       c.Options.Clone(),
	}
	if c.FilteredSharedFields != nil {
		out.FilteredSharedFields = append([]string{}, c.FilteredSharedFields...)
	}
	if c.DateField != nil {
		df := *c.DateField
		out.DateField = &df
	}
	return out
}

// BuildDefault returns the starting config for a new visualization over ds.
// filters is stored by reference, not copied. The projection includes every
// shared field, in order.
func BuildDefault(ds *models.Dataset, filters filter.Lookup, sharedFields []string) Config {
	cfg := Config{
		FilteredSharedFields: []string{},
		FieldRequests:        filters,
	}
	if ds != nil {
		cfg.DatasetID = ds.ID
		if ds.DateField != "" {
			df := ds.DateField
			cfg.DateField = &df
		}
	}
	cfg.Options.Projection = make(Projection, 0, len(sharedFields))
	for _, f := range sharedFields {
		cfg.Options.Projection = cfg.Options.Projection.Set(f, 1)
	}
	return cfg
}

// ExtractFilters returns copies of the config's field requests and filtered
// shared fields.
func ExtractFilters(cfg Config) (filter.Lookup, []string) {
	filters := filter.Lookup{}
	var fields []string
	ExtractFiltersInto(cfg, filters, &fields)
	return filters, fields
}

// ExtractFiltersInto writes the config's field requests into out, overwriting
// existing keys, and appends its filtered shared fields to outFields.
func ExtractFiltersInto(cfg Config, out filter.Lookup, outFields *[]string) {
	for k, v := range cfg.FieldRequests {
		out[k] = v.Clone()
	}
	if outFields != nil {
		*outFields = append(*outFields, cfg.FilteredSharedFields...)
	}
}

// OverrideDate returns a copy of cfg whose date-field request is replaced by
// a conjunction of {date: {$gt: start}} and {date: {$lt: end}}. Nil or empty
// bounds are left out. Without a date field, or without any bound, the copy
// is returned unchanged.
func OverrideDate(cfg Config, start, end *string) Config {
	out := cfg.Clone()
	if cfg.DateField == nil || *cfg.DateField == "" {
		return out
	}
	hasStart := start != nil && *start != ""
	hasEnd := end != nil && *end != ""
	if !hasStart && !hasEnd {
		return out
	}

	field := *cfg.DateField
	bounds := make([]filter.Tree, 0, 2)
	if hasStart {
		bounds = append(bounds, filter.Pred(field, filter.OpGt, *start))
	}
	if hasEnd {
		bounds = append(bounds, filter.Pred(field, filter.OpLt, *end))
	}
	if out.FieldRequests == nil {
		out.FieldRequests = filter.Lookup{}
	}
	out.FieldRequests[field] = filter.And(bounds...)
	return out
}

// ConvertLastNBack returns a copy of cfg with every relative-date token
// replaced by its date as of now. Every string in the config is visited,
// keys included, as are filter nodes kept raw. Only strings exactly equal to
// a token are replaced.
func ConvertLastNBack(cfg Config, now time.Time) Config {
	out := cfg.Clone()
	resolve := func(v any) any { return reldate.Walk(v, now) }
	str := func(s string) string {
		if d, ok := reldate.Resolve(s, now); ok {
			return d
		}
		return s
	}

	out.DatasetID = str(out.DatasetID)
	if out.DateField != nil {
		df := str(*out.DateField)
		out.DateField = &df
	}
	if len(out.FieldRequests) > 0 {
		requests := make(filter.Lookup, len(out.FieldRequests))
		for k, tree := range out.FieldRequests {
			requests[str(k)] = tree.Map(resolve)
		}
		out.FieldRequests = requests
	}
	for i, f := range out.FilteredSharedFields {
		out.FilteredSharedFields[i] = str(f)
	}
	for i, p := range out.Options.Projection {
		out.Options.Projection[i].Field = str(p.Field)
		out.Options.Projection[i].Value = resolve(p.Value)
	}
	if len(out.Options.Extra) > 0 {
		extra := make(map[string]any, len(out.Options.Extra))
		for k, v := range out.Options.Extra {
			extra[str(k)] = resolve(v)
		}
		out.Options.Extra = extra
	}
	return out
}
