// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package reldate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2024, time.March, 31, 15, 4, 5, 0, time.UTC)

func TestResolve(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"LAST_30_DAYS_BACK", "2024-03-01", true},
		{"LAST_60_DAYS_BACK", "2024-01-31", true},
		{"LAST_90_DAYS_BACK", "2024-01-01", true},
		{"LAST_180_DAYS_BACK", "2023-10-03", true},
		{"LAST_365_DAYS_BACK", "2023-04-01", true},
		{"LAST_7_DAYS_BACK", "", false},
		{"prefix LAST_30_DAYS_BACK", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Resolve(tt.in, fixedNow)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	in := map[string]any{
		"a": "LAST_30_DAYS_BACK",
		"b": []any{"LAST_90_DAYS_BACK", "keep", 3},
		"c": map[string]any{"$gt": "LAST_30_DAYS_BACK"},
		"d": "note: LAST_30_DAYS_BACK",
	}
	want := map[string]any{
		"a": "2024-03-01",
		"b": []any{"2024-01-01", "keep", 3},
		"c": map[string]any{"$gt": "2024-03-01"},
		"d": "note: LAST_30_DAYS_BACK",
	}

	got := Walk(in, fixedNow)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
	}
	if in["a"] != "LAST_30_DAYS_BACK" {
		t.Errorf("Walk mutated its input")
	}
}

func TestWalkJSON(t *testing.T) {
	out, err := WalkJSON([]byte(`{"x":["LAST_60_DAYS_BACK",1.50]}`), fixedNow)
	if err != nil {
		t.Fatalf("WalkJSON() error = %v", err)
	}
	if got, want := string(out), `{"x":["2024-01-31",1.50]}`; got != want {
		t.Errorf("WalkJSON() = %s, want %s", got, want)
	}
}
