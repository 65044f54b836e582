// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package filter

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	out := Tree{kind: t.kind, field: t.field, op: t.op, value: CloneValue(t.value)}
	if t.raw != nil {
		out.raw = append(json.RawMessage(nil), t.raw...)
	}
	if t.children != nil {
		out.children = make([]Tree, len(t.children))
		for i, c := range t.children {
			out.children[i] = c.Clone()
		}
	}
	return out
}

// Map returns a copy of t with fn applied to every predicate value. Nodes and
// predicate bodies kept raw are decoded, mapped as a whole and re-encoded
// only when fn changed them.
func (t Tree) Map(fn func(any) any) Tree {
	out := t.Clone()
	out.mapValues(fn)
	return out
}

func (t *Tree) mapValues(fn func(any) any) {
	if t.kind == KindPredicate && t.op != "" {
		t.value = fn(t.value)
	}
	if t.raw != nil {
		t.raw = mapRaw(t.raw, fn)
	}
	for i := range t.children {
		t.children[i].mapValues(fn)
	}
}

func mapRaw(raw json.RawMessage, fn func(any) any) json.RawMessage {
	v, err := decodeValue(raw)
	if err != nil {
		return raw
	}
	before, err := json.Marshal(v)
	if err != nil {
		return raw
	}
	after, err := json.Marshal(fn(v))
	if err != nil || bytes.Equal(before, after) {
		return raw
	}
	return after
}

// CloneValue deep copies a decoded JSON value. Maps, slices and trees are
// copied; other values are returned as is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = CloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case json.RawMessage:
		return append(json.RawMessage(nil), val...)
	case Tree:
		return val.Clone()
	case *Tree:
		if val == nil {
			return val
		}
		c := val.Clone()
		return &c
	case Lookup:
		return val.Clone()
	default:
		return v
	}
}
