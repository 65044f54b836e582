// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package models

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/filter"
)

// Field describes one column of a dataset.
type Field struct {
	DisplayName      string            `json:"display_name"`
	DataFieldName    string            `json:"data_field_name"`
	DataFieldType    string            `json:"data_field_type"`
	DateGranularity  string            `json:"date_granularity,omitempty"`
	IsReference      bool              `json:"is_reference"`
	Values           []*string         `json:"values,omitempty"`
	RegionMapID      *string           `json:"region_map_id,omitempty"`
	RegionMapMapping map[string]string `json:"region_map_mapping,omitempty"`
}

// HasRegionMap reports whether the field is bound to a region map.
func (f *Field) HasRegionMap() bool {
	return f.RegionMapID != nil
}

// Dataset is a dataset descriptor as returned by GET /dataset/{id}.
type Dataset struct {
	ID                 string       `json:"id"`
	DatasetName        string       `json:"dataset_name,omitempty"`
	DatasetDisplayName string       `json:"dataset_display_name,omitempty"`
	DisplayName        string       `json:"display_name,omitempty"`
	Description        string       `json:"description,omitempty"`
	DatasourceID       string       `json:"datasource_id,omitempty"`
	Fields             []Field      `json:"fields"`
	IsActive           bool         `json:"is_active"`
	DateField          string       `json:"date_field,omitempty"`
	PrimaryKeyField    string       `json:"primary_key_field,omitempty"`
	BaseQuery          DatasetQuery `json:"base_query"`
	Expiration         *Timestamp   `json:"expiration,omitempty"`
	SharedWith         []string     `json:"shared_with,omitempty"`
	Groups             []string     `json:"groups,omitempty"`
}

// FieldNames returns the data field names in declaration order.
func (d *Dataset) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for i := range d.Fields {
		names = append(names, d.Fields[i].DataFieldName)
	}
	return names
}

// Order is a sort direction in an order_by clause.
type Order string

// Sort directions.
const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Aggregator is one named aggregate in a group_by clause.
type Aggregator struct {
	Field    string `json:"field"`
	Function string `json:"function"`
}

// GroupBy is the group_by clause of a dataset query.
type GroupBy struct {
	Fields      []string              `json:"fields"`
	Aggregators map[string]Aggregator `json:"aggregators"`
}

// DatasetQuery is the body posted to /dataset/{id}/query and the shape of a
// dataset's base query.
type DatasetQuery struct {
	Computed        map[string]map[string]any `json:"computed,omitempty"`
	Request         *filter.Tree              `json:"request,omitempty"`
	Projection      map[string]bool           `json:"projection,omitempty"`
	GroupBy         *GroupBy                  `json:"group_by,omitempty"`
	Limit           *int                      `json:"limit,omitempty"`
	Offset          *int                      `json:"offset,omitempty"`
	OrderBy         [][]string                `json:"order_by,omitempty"`
	Transformations map[string]any            `json:"transformations,omitempty"`
	CountFields     []string                  `json:"count_fields,omitempty"`
	DistinctField   string                    `json:"distinct_field,omitempty"`
	Aggregate       any                       `json:"aggregate,omitempty"`
}

// Grouped reports whether the query carries a group_by clause.
func (q *DatasetQuery) Grouped() bool {
	return q.GroupBy != nil
}

// Clone returns a deep copy of q.
func (q *DatasetQuery) Clone() DatasetQuery {
	out := DatasetQuery{
		DistinctField: q.DistinctField,
		Aggregate:     filter.CloneValue(q.Aggregate),
	}
	if q.Computed != nil {
		out.Computed = make(map[string]map[string]any, len(q.Computed))
		for k, v := range q.Computed {
			out.Computed[k], _ = filter.CloneValue(map[string]any(v)).(map[string]any)
		}
	}
	if q.Request != nil {
		r := q.Request.Clone()
		out.Request = &r
	}
	if q.Projection != nil {
		out.Projection = make(map[string]bool, len(q.Projection))
		for k, v := range q.Projection {
			out.Projection[k] = v
		}
	}
	if q.GroupBy != nil {
		gb := &GroupBy{Fields: append([]string(nil), q.GroupBy.Fields...)}
		if q.GroupBy.Aggregators != nil {
			gb.Aggregators = make(map[string]Aggregator, len(q.GroupBy.Aggregators))
			for k, v := range q.GroupBy.Aggregators {
				gb.Aggregators[k] = v
			}
		}
		out.GroupBy = gb
	}
	if q.Limit != nil {
		v := *q.Limit
		out.Limit = &v
	}
	if q.Offset != nil {
		v := *q.Offset
		out.Offset = &v
	}
	if q.OrderBy != nil {
		out.OrderBy = make([][]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			out.OrderBy[i] = append([]string(nil), o...)
		}
	}
	if q.Transformations != nil {
		out.Transformations, _ = filter.CloneValue(q.Transformations).(map[string]any)
	}
	if q.CountFields != nil {
		out.CountFields = append([]string(nil), q.CountFields...)
	}
	return out
}

// InactiveError is the error marker of the synthetic result returned for
// queries against inactive datasets.
const InactiveError = "inactive"

// QueryRows is one element of a query response's data array.
type QueryRows struct {
	Error  string           `json:"error,omitempty"`
	Total  int              `json:"total"`
	Values []map[string]any `json:"values"`
}

// QueryResult is the raw body of a query response. Data is kept verbatim.
type QueryResult struct {
	Data json.RawMessage `json:"data"`
}

// InactiveResult returns the result reported for an inactive dataset without
// contacting the query endpoint.
func InactiveResult() *QueryResult {
	return &QueryResult{Data: json.RawMessage(`[{"error":"inactive","total":0,"values":[]}]`)}
}

// Rows decodes Data as a list of row sets.
func (r *QueryResult) Rows() ([]QueryRows, error) {
	var rows []QueryRows
	if err := json.Unmarshal(r.Data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Inactive reports whether r is the inactive-dataset result.
func (r *QueryResult) Inactive() bool {
	rows, err := r.Rows()
	if err != nil || len(rows) != 1 {
		return false
	}
	return rows[0].Error == InactiveError
}
