// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tomtom215/dataconsole/internal/filter"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T12:30:00", want},
		{"2024-05-01T12:30:00.000000", want},
		{"2024-05-01T12:30:00Z", want},
		{"2024-05-01T14:30:00+02:00", want},
		{"2024-05-01 12:30:00", want},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got.Time, tt.want)
		}
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestUser_Decode(t *testing.T) {
	t.Parallel()

	doc := `{"id":"u1","username":"ana","enabled":true,
		"permissions":{"read_dashboards":true,"read_maps":false},
		"created":"2023-01-01T00:00:00","password_last_updated":null}`
	var u User
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if u.PasswordLastUpdated != nil && !u.PasswordLastUpdated.IsZero() {
		t.Errorf("PasswordLastUpdated = %v, want unset", u.PasswordLastUpdated)
	}
	if got := u.PasswordChangedAt(); !got.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PasswordChangedAt() = %v, want creation time", got)
	}
}

func TestUser_HasAny(t *testing.T) {
	t.Parallel()

	var nilUser *User
	if nilUser.HasAny("x") {
		t.Error("nil user must hold nothing")
	}

	viewer := &User{Permissions: map[string]bool{"read_maps": true, "read_users": false}}
	admin := &User{Permissions: map[string]bool{PermissionAdmin: true}}

	tests := []struct {
		name  string
		user  *User
		perms []string
		want  bool
	}{
		{"held", viewer, []string{"read_maps"}, true},
		{"any of", viewer, []string{"read_users", "read_maps"}, true},
		{"false entry", viewer, []string{"read_users"}, false},
		{"missing", viewer, []string{"create_dataset"}, false},
		{"no names", viewer, nil, false},
		{"admin", admin, []string{"anything"}, true},
		{"admin no names", admin, nil, true},
	}
	for _, tt := range tests {
		if got := tt.user.HasAny(tt.perms...); got != tt.want {
			t.Errorf("%s: HasAny(%v) = %v, want %v", tt.name, tt.perms, got, tt.want)
		}
	}
}

func TestUser_PasswordExpired(t *testing.T) {
	t.Parallel()

	const maxAge = 90 * 24 * time.Hour
	updated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u := &User{PasswordLastUpdated: &Timestamp{Time: updated}}

	tests := []struct {
		elapsed time.Duration
		want    bool
	}{
		{maxAge - time.Millisecond, false},
		{maxAge, false},
		{maxAge + time.Millisecond, true},
	}
	for _, tt := range tests {
		if got := u.PasswordExpired(updated.Add(tt.elapsed), maxAge); got != tt.want {
			t.Errorf("PasswordExpired(+%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestErrorBody_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		doc  string
		want string
	}{
		{`{"detail":"Invalid credentials"}`, "Invalid credentials"},
		{`{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{`{}`, ""},
		{`{"detail":42}`, "42"},
	}
	for _, tt := range tests {
		var b ErrorBody
		if err := json.Unmarshal([]byte(tt.doc), &b); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.doc, err)
		}
		if got := b.Message(); got != tt.want {
			t.Errorf("Message() for %s = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

func TestDatasetQuery_Clone(t *testing.T) {
	t.Parallel()

	limit := 10
	req := filter.And(filter.Pred("a", filter.OpEq, 1))
	orig := DatasetQuery{
		Request:    &req,
		Projection: map[string]bool{"a": true},
		GroupBy: &GroupBy{
			Fields:      []string{"a"},
			Aggregators: map[string]Aggregator{"sum": {Field: "b", Function: "sum"}},
		},
		Limit:           &limit,
		OrderBy:         [][]string{{"a", "asc"}},
		Transformations: map[string]any{"t": []any{"x"}},
		Computed:        map[string]map[string]any{"c": {"$add": []any{"a", "b"}}},
	}
	clone := orig.Clone()

	if diff := cmp.Diff(orig, clone, cmp.AllowUnexported(filter.Tree{}), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Clone() mismatch (-orig +clone):\n%s", diff)
	}

	*clone.Limit = 99
	clone.Projection["b"] = true
	clone.GroupBy.Fields[0] = "z"
	clone.OrderBy[0][1] = "desc"
	clone.Transformations["t"].([]any)[0] = "y"

	if *orig.Limit != 10 || len(orig.Projection) != 1 || orig.GroupBy.Fields[0] != "a" ||
		orig.OrderBy[0][1] != "asc" || orig.Transformations["t"].([]any)[0] != "x" {
		t.Errorf("Clone() shares state with the original: %+v", orig)
	}
}

func TestQueryResult_Inactive(t *testing.T) {
	t.Parallel()

	res := InactiveResult()
	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(out), `{"data":[{"error":"inactive","total":0,"values":[]}]}`; got != want {
		t.Errorf("InactiveResult() = %s, want %s", got, want)
	}
	if !res.Inactive() {
		t.Error("Inactive() = false for the inactive result")
	}

	live := &QueryResult{Data: json.RawMessage(`[{"total":1,"values":[{"a":1}]}]`)}
	if live.Inactive() {
		t.Error("Inactive() = true for a live result")
	}
	rows, err := live.Rows()
	if err != nil || len(rows) != 1 || rows[0].Total != 1 {
		t.Errorf("Rows() = %+v, %v", rows, err)
	}
}
