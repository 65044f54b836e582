// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package mockapi

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/dataconsole/internal/models"
)

func fixtureRows(t *testing.T) []map[string]any {
	t.Helper()
	doc := `[
		{"name":"Alpha","kind":"a","n":3,"flag":true},
		{"name":"beta","kind":"b","n":1,"flag":false},
		{"name":"Gamma","kind":"a","n":2,"flag":null},
		{"name":"delta","kind":"b","n":10}
	]`
	var rows []map[string]any
	if err := decodeNumbers([]byte(doc), &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	return rows
}

func decodeQuery(t *testing.T, doc string) models.DatasetQuery {
	t.Helper()
	var q models.DatasetQuery
	if err := json.Unmarshal([]byte(doc), &q); err != nil {
		t.Fatalf("decode query %s: %v", doc, err)
	}
	return q
}

func names(rows []map[string]any) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["name"].(string))
	}
	return out
}

func TestEvaluate_Filters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request string
		want    []string
	}{
		{"eq", `{"kind":{"$eq":"a"}}`, []string{"Alpha", "Gamma"}},
		{"ne", `{"kind":{"$ne":"a"}}`, []string{"beta", "delta"}},
		{"gt number", `{"n":{"$gt":2}}`, []string{"Alpha", "delta"}},
		{"le number", `{"n":{"$le":2}}`, []string{"beta", "Gamma"}},
		{"in", `{"n":{"$in":[1,10]}}`, []string{"beta", "delta"}},
		{"nin", `{"n":{"$nin":[1,10]}}`, []string{"Alpha", "Gamma"}},
		{"like", `{"name":{"$like":"%ta"}}`, []string{"beta", "delta"}},
		{"ilike", `{"name":{"$ilike":"a%"}}`, []string{"Alpha"}},
		{"notilike", `{"name":{"$notilike":"%a"}}`, []string{}},
		{"like underscore", `{"name":{"$like":"_eta"}}`, []string{"beta"}},
		{"startswith", `{"name":{"$startswith":"G"}}`, []string{"Gamma"}},
		{"contains", `{"name":{"$contains":"elt"}}`, []string{"delta"}},
		{"is null", `{"flag":{"$is":null}}`, []string{"Gamma", "delta"}},
		{"isnot null", `{"flag":{"$isnot":null}}`, []string{"Alpha", "beta"}},
		{"and", `{"$and":[{"kind":{"$eq":"b"}},{"n":{"$gt":5}}]}`, []string{"delta"}},
		{"or", `{"$or":[{"n":{"$eq":3}},{"name":{"$eq":"beta"}}]}`, []string{"Alpha", "beta"}},
		{"not", `{"$not":{"kind":{"$eq":"a"}}}`, []string{"beta", "delta"}},
		{"empty and", `{"$and":[]}`, []string{"Alpha", "beta", "Gamma", "delta"}},
	}
	for _, tt := range tests {
		q := decodeQuery(t, `{"request":`+tt.request+`}`)
		got, err := evaluate(q, fixtureRows(t))
		if err != nil {
			t.Errorf("%s: evaluate() error = %v", tt.name, err)
			continue
		}
		if diff := cmp.Diff(tt.want, names(got.Values)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", tt.name, diff)
		}
		if got.Total != len(tt.want) {
			t.Errorf("%s: Total = %d, want %d", tt.name, got.Total, len(tt.want))
		}
	}
}

func TestEvaluate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown operator", `{"request":{"n":{"$between":[1,2]}}}`, "operator $between is not supported"},
		{"multi-operator body", `{"request":{"n":{"$gt":1,"$lt":3}}}`, "unsupported filter on n"},
		{"in needs list", `{"request":{"n":{"$in":1}}}`, "$in expects a list"},
		{"bad aggregator", `{"group_by":{"fields":["kind"],"aggregators":{"x":{"field":"n","function":"median"}}}}`, "median is not supported"},
		{"bad order", `{"order_by":[["n","up"]]}`, "invalid order_by clause"},
	}
	for _, tt := range tests {
		_, err := evaluate(decodeQuery(t, tt.doc), fixtureRows(t))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: evaluate() error = %v, want containing %q", tt.name, err, tt.want)
		}
	}
}

func TestEvaluate_GroupOrderPage(t *testing.T) {
	t.Parallel()

	q := decodeQuery(t, `{
		"group_by":{"fields":["kind"],"aggregators":{
			"count":{"field":"n","function":"count"},
			"sum":{"field":"n","function":"sum"},
			"max":{"field":"name","function":"max"}}},
		"order_by":[["sum","desc"]]
	}`)
	got, err := evaluate(q, fixtureRows(t))
	if err != nil {
		t.Fatalf("evaluate() error = %v", err)
	}
	want := models.QueryRows{
		Total: 2,
		Values: []map[string]any{
			{"kind": "b", "count": 2, "sum": json.Number("11"), "max": "delta"},
			{"kind": "a", "count": 2, "sum": json.Number("5"), "max": "Gamma"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("grouped mismatch (-want +got):\n%s", diff)
	}

	paged := decodeQuery(t, `{"order_by":[["n","asc"]],"offset":1,"limit":2,"projection":{"name":true,"n":false}}`)
	got, err = evaluate(paged, fixtureRows(t))
	if err != nil {
		t.Fatalf("evaluate() error = %v", err)
	}
	if got.Total != 4 {
		t.Errorf("Total = %d, want 4 before paging", got.Total)
	}
	if diff := cmp.Diff([]map[string]any{{"name": "Gamma"}, {"name": "Alpha"}}, got.Values); diff != "" {
		t.Errorf("paged mismatch (-want +got):\n%s", diff)
	}

	past := decodeQuery(t, `{"offset":10}`)
	got, err = evaluate(past, fixtureRows(t))
	if err != nil || got.Total != 4 || len(got.Values) != 0 {
		t.Errorf("offset past end = %+v, %v", got, err)
	}
}
