// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package visualization

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/dataconsole/internal/filter"
	"github.com/tomtom215/dataconsole/internal/models"
)

func strp(s string) *string { return &s }

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return string(out)
}

func TestBuildDefault(t *testing.T) {
	t.Parallel()

	ds := &models.Dataset{ID: "d1", DateField: "visit_date"}
	filters := filter.Lookup{"state": filter.Pred("state", filter.OpEq, "VA")}
	cfg := BuildDefault(ds, filters, []string{"state", "county", "age"})

	want := `{"dataset_id":"d1","dataset_filtered_shared_fields":[],` +
		`"dataset_field_requests":{"state":{"state":{"$eq":"VA"}}},"date_field":"visit_date",` +
		`"visualization_options":{"projection":{"state":1,"county":1,"age":1}}}`
	if got := mustJSON(t, cfg); got != want {
		t.Errorf("BuildDefault() = %s\nwant %s", got, want)
	}

	filters["county"] = filter.Pred("county", filter.OpEq, "Fairfax")
	if _, ok := cfg.FieldRequests["county"]; !ok {
		t.Error("BuildDefault() copied filters, want the caller's lookup")
	}
}

func TestBuildDefault_NoDataset(t *testing.T) {
	t.Parallel()

	cfg := BuildDefault(nil, filter.Lookup{}, nil)
	if cfg.DatasetID != "" || cfg.DateField != nil {
		t.Errorf("BuildDefault(nil) = %+v", cfg)
	}
	if got := mustJSON(t, cfg.Options); got != `{"projection":{}}` {
		t.Errorf("options = %s", got)
	}

	cfg = BuildDefault(&models.Dataset{ID: "d2"}, nil, nil)
	if cfg.DateField != nil {
		t.Errorf("DateField = %q, want nil", *cfg.DateField)
	}
}

func TestExtractFilters(t *testing.T) {
	t.Parallel()

	cfg := Config{
		FieldRequests: filter.Lookup{
			"state": filter.Pred("state", filter.OpEq, "VA"),
			"age":   filter.Pred("age", filter.OpGt, 10),
		},
		FilteredSharedFields: []string{"state"},
	}

	got, fields := ExtractFilters(cfg)
	if diff := cmp.Diff(cfg.FieldRequests, got, cmp.AllowUnexported(filter.Tree{})); diff != "" {
		t.Errorf("ExtractFilters() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"state"}, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	got["state"] = filter.Pred("state", filter.OpEq, "MD")
	if cfg.FieldRequests["state"].Value() != "VA" {
		t.Error("ExtractFilters() result aliases the config")
	}
}

func TestExtractFiltersInto(t *testing.T) {
	t.Parallel()

	cfg := Config{
		FieldRequests:        filter.Lookup{"state": filter.Pred("state", filter.OpEq, "VA")},
		FilteredSharedFields: []string{"state", "county"},
	}
	out := filter.Lookup{
		"state": filter.Pred("state", filter.OpEq, "MD"),
		"age":   filter.Pred("age", filter.OpLt, 5),
	}
	fields := []string{"age"}

	ExtractFiltersInto(cfg, out, &fields)

	if len(out) != 2 || out["state"].Value() != "VA" {
		t.Errorf("out = %v, want state overwritten and age kept", out)
	}
	if diff := cmp.Diff([]string{"age", "state", "county"}, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestOverrideDate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			DateField: strp("d"),
			FieldRequests: filter.Lookup{
				"d":     filter.Pred("d", filter.OpGt, "2020-01-01"),
				"state": filter.Pred("state", filter.OpEq, "VA"),
			},
		}
	}

	tests := []struct {
		name  string
		cfg   Config
		start *string
		end   *string
		want  string
	}{
		{
			name:  "both bounds",
			cfg:   base(),
			start: strp("2024-01-01"),
			end:   strp("2024-02-01"),
			want:  `{"$and":[{"d":{"$gt":"2024-01-01"}},{"d":{"$lt":"2024-02-01"}}]}`,
		},
		{
			name:  "start only",
			cfg:   base(),
			start: strp("2024-01-01"),
			want:  `{"$and":[{"d":{"$gt":"2024-01-01"}}]}`,
		},
		{
			name: "end only",
			cfg:  base(),
			end:  strp("2024-02-01"),
			want: `{"$and":[{"d":{"$lt":"2024-02-01"}}]}`,
		},
		{
			name: "no bounds",
			cfg:  base(),
			want: `{"d":{"$gt":"2020-01-01"}}`,
		},
		{
			name:  "empty bounds",
			cfg:   base(),
			start: strp(""),
			end:   strp(""),
			want:  `{"d":{"$gt":"2020-01-01"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := OverrideDate(tt.cfg, tt.start, tt.end)
			if s := mustJSON(t, got.FieldRequests["d"]); s != tt.want {
				t.Errorf("date request = %s, want %s", s, tt.want)
			}
			if s := mustJSON(t, tt.cfg.FieldRequests["d"]); s != `{"d":{"$gt":"2020-01-01"}}` {
				t.Errorf("original mutated: %s", s)
			}
			if got.FieldRequests["state"].Value() != "VA" {
				t.Error("other requests not carried over")
			}
		})
	}
}

func TestOverrideDate_NoDateField(t *testing.T) {
	t.Parallel()

	cfg := Config{FieldRequests: filter.Lookup{"state": filter.Pred("state", filter.OpEq, "VA")}}
	got := OverrideDate(cfg, strp("2024-01-01"), nil)
	if len(got.FieldRequests) != 1 {
		t.Errorf("FieldRequests = %v, want unchanged", got.FieldRequests)
	}

	cfg = Config{DateField: strp("d")}
	got = OverrideDate(cfg, strp("2024-01-01"), nil)
	if s := mustJSON(t, got.FieldRequests); s != `{"d":{"$and":[{"d":{"$gt":"2024-01-01"}}]}}` {
		t.Errorf("FieldRequests = %s", s)
	}
	if cfg.FieldRequests != nil {
		t.Error("original mutated")
	}
}

func TestConvertLastNBack(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC)
	cfg := Config{
		DatasetID: "d1",
		FieldRequests: filter.Lookup{
			"d": filter.And(
				filter.Pred("d", filter.OpGt, "LAST_90_DAYS_BACK"),
				filter.Pred("d", filter.OpLt, "2024-03-30"),
			),
			"state": filter.Pred("state", filter.OpIn, []any{"LAST_30_DAYS_BACK", "VA"}),
			"note":  filter.Pred("note", filter.OpLike, "LAST_30_DAYS_BACK_X"),
		},
		Options: Options{
			Projection: Projection{{Field: "d", Value: 1}},
			Extra: map[string]any{
				"window": map[string]any{"from": "LAST_365_DAYS_BACK"},
			},
		},
	}

	got := ConvertLastNBack(cfg, now)

	want := `{"dataset_id":"d1","dataset_filtered_shared_fields":null,"dataset_field_requests":` +
		`{"d":{"$and":[{"d":{"$gt":"2024-01-01"}},{"d":{"$lt":"2024-03-30"}}]},` +
		`"note":{"note":{"$like":"LAST_30_DAYS_BACK_X"}},` +
		`"state":{"state":{"$in":["2024-03-01","VA"]}}},"date_field":null,` +
		`"visualization_options":{"projection":{"d":1},"window":{"from":"2023-04-01"}}}`
	if s := mustJSON(t, got); s != want {
		t.Errorf("ConvertLastNBack() = %s\nwant %s", s, want)
	}
	if cfg.FieldRequests["d"].Children()[0].Value() != "LAST_90_DAYS_BACK" {
		t.Error("original mutated")
	}

	again := ConvertLastNBack(got, now)
	if mustJSON(t, again) != mustJSON(t, got) {
		t.Error("ConvertLastNBack() not idempotent on token-free input")
	}
}

func TestConvertLastNBack_RawNodesAndKeys(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC)
	doc := `{"dataset_id":"LAST_60_DAYS_BACK","dataset_filtered_shared_fields":["LAST_60_DAYS_BACK"],` +
		`"dataset_field_requests":{"d":{"d":{"$gt":"LAST_60_DAYS_BACK","$lt":"2024-03-30"}},` +
		`"LAST_60_DAYS_BACK":{"a":1,"b":"LAST_30_DAYS_BACK"}},"date_field":"LAST_60_DAYS_BACK",` +
		`"visualization_options":{"projection":{"z":1,"LAST_60_DAYS_BACK":1}}}`
	var cfg Config
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if kind := cfg.FieldRequests["LAST_60_DAYS_BACK"].Kind(); kind != filter.KindRaw {
		t.Fatalf("two-key node kind = %v, want raw", kind)
	}

	got := ConvertLastNBack(cfg, now)

	want := `{"dataset_id":"2024-01-31","dataset_filtered_shared_fields":["2024-01-31"],` +
		`"dataset_field_requests":{"2024-01-31":{"a":1,"b":"2024-03-01"},` +
		`"d":{"d":{"$gt":"2024-01-31","$lt":"2024-03-30"}}},"date_field":"2024-01-31",` +
		`"visualization_options":{"projection":{"z":1,"2024-01-31":1}}}`
	if s := mustJSON(t, got); s != want {
		t.Errorf("ConvertLastNBack() = %s\nwant %s", s, want)
	}
	if *cfg.DateField != "LAST_60_DAYS_BACK" || cfg.Options.Projection[1].Field != "LAST_60_DAYS_BACK" {
		t.Error("original mutated")
	}
}

func TestConfig_RoundTripKeepsProjectionOrder(t *testing.T) {
	t.Parallel()

	doc := `{"dataset_id":"d1","dataset_filtered_shared_fields":["z"],` +
		`"dataset_field_requests":{"z":{"z":{"$eq":1}}},"date_field":null,` +
		`"visualization_options":{"projection":{"z":1,"a":1,"m":0},"chart":{"type":"line"},"aggregate":"sum"}}`

	var cfg Config
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, cfg.Options.Projection.Fields()); diff != "" {
		t.Errorf("projection order mismatch (-want +got):\n%s", diff)
	}

	want := `{"dataset_id":"d1","dataset_filtered_shared_fields":["z"],` +
		`"dataset_field_requests":{"z":{"z":{"$eq":1}}},"date_field":null,` +
		`"visualization_options":{"projection":{"z":1,"a":1,"m":0},"aggregate":"sum","chart":{"type":"line"}}}`
	if got := mustJSON(t, cfg); got != want {
		t.Errorf("re-encoded = %s\nwant %s", got, want)
	}
}

func TestCatalogs(t *testing.T) {
	t.Parallel()

	if got := len(Types()); got != 6 {
		t.Errorf("len(Types()) = %d, want 6", got)
	}
	overlay := OverlayTypes()
	if len(overlay) != 2 || overlay[0].Value != TypeLine || overlay[1].Value != TypeBar {
		t.Errorf("OverlayTypes() = %v", overlay)
	}
	if got := DisplayName(TypePivot); got != "Pivot Table" {
		t.Errorf("DisplayName(pivot) = %q", got)
	}
	if got := DisplayName("radar"); got != "" {
		t.Errorf("DisplayName(radar) = %q, want empty", got)
	}
	if got := AggregationFunctions()[0].Value; got != "rows" {
		t.Errorf("first aggregation = %q, want rows", got)
	}
	if got := len(DetectionAlgorithms()); got != 5 {
		t.Errorf("len(DetectionAlgorithms()) = %d, want 5", got)
	}

	want := []Choice{
		{"LAST_30_DAYS_BACK", "Last 30 Days"},
		{"LAST_60_DAYS_BACK", "Last 60 Days"},
		{"LAST_90_DAYS_BACK", "Last 90 Days"},
		{"LAST_180_DAYS_BACK", "Last 180 Days"},
		{"LAST_365_DAYS_BACK", "Last 365 Days"},
	}
	if diff := cmp.Diff(want, LastNBackOptions()); diff != "" {
		t.Errorf("LastNBackOptions() mismatch (-want +got):\n%s", diff)
	}

	types := Types()
	types[0].Label = "changed"
	if Types()[0].Label != "Table" {
		t.Error("Types() exposes the catalog")
	}
}
