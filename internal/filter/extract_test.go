// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package filter

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func decodeTree(t *testing.T, doc string) *Tree {
	t.Helper()
	var tree Tree
	if err := json.Unmarshal([]byte(doc), &tree); err != nil {
		t.Fatalf("decode %s: %v", doc, err)
	}
	return &tree
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantKeys []string
	}{
		{"single predicate", `{"$and":[{"country":{"$eq":"NL"}}]}`, []string{"country"}},
		{
			"two-sided range",
			`{"$and":[{"$and":[{"d":{"$gt":"2024-01-01"}},{"d":{"$lt":"2024-02-01"}}]}]}`,
			[]string{"d"},
		},
		{
			"or child uses first element",
			`{"$and":[{"$or":[{"a":{"$eq":1}},{"b":{"$eq":2}}]},{"c":{"$eq":3}}]}`,
			[]string{"a", "c"},
		},
		{
			"one level only",
			`{"$and":[{"$and":[{"$or":[{"a":{"$eq":1}}]}]}]}`,
			[]string{"$or"},
		},
		{"not child", `{"$and":[{"$not":{"a":{"$eq":1}}}]}`, []string{"$not"}},
		{"empty logical child skipped", `{"$and":[{"$or":[]},{"a":{"$eq":1}}]}`, []string{"a"}},
		{"raw child skipped", `{"$and":[{"a":{"$eq":1},"b":{"$eq":2}}]}`, []string{}},
		{"non-and root", `{"$or":[{"a":{"$eq":1}}]}`, []string{}},
		{"predicate root", `{"a":{"$eq":1}}`, []string{}},
		{"malformed predicate kept", `{"$and":[{"a":"oops"}]}`, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(decodeTree(t, tt.doc))
			if diff := cmp.Diff(tt.wantKeys, got.Keys()); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_Nil(t *testing.T) {
	got := Extract(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Extract(nil) = %v, want empty non-nil lookup", got)
	}
}

func TestExtract_StoresWholeChild(t *testing.T) {
	doc := `{"$and":[{"$and":[{"d":{"$gt":"a"}},{"d":{"$lt":"b"}}]}]}`
	got := Extract(decodeTree(t, doc))

	out, err := json.Marshal(got["d"])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	jsonEqual(t, out, `{"$and":[{"d":{"$gt":"a"}},{"d":{"$lt":"b"}}]}`)
}

func TestExtract_LaterDuplicateWins(t *testing.T) {
	doc := `{"$and":[{"a":{"$eq":1}},{"$or":[{"a":{"$eq":2}},{"a":{"$eq":3}}]}]}`
	got := Extract(decodeTree(t, doc))

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got["a"].Kind() != KindOr {
		t.Errorf("a kind = %v, want $or", got["a"].Kind())
	}
}

func TestExtract_LeftInverseOfSinglePredicate(t *testing.T) {
	preds := []Tree{
		Pred("name", OpEq, "x"),
		Pred("age", OpIn, []any{json.Number("1"), json.Number("9")}),
		Pred("flag", OpIs, nil),
	}
	for _, p := range preds {
		root := And(p)
		got := Extract(&root)
		want := Lookup{p.Field(): p}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(Tree{})); diff != "" {
			t.Errorf("Extract(And(%s)) mismatch (-want +got):\n%s", p.Field(), diff)
		}
	}
}
