// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package filter

// Extract flattens the direct children of a top-level $and into a Lookup.
//
// A nil tree or a root that is not a conjunction yields an empty lookup.
// For an $and/$or child the key is the key of its first element; any other
// child is stored under its own key. The whole child is stored, and a later
// child with the same key replaces an earlier one. Empty logical children
// and raw nodes have no representative key and are skipped. Predicates are
// not validated.
func Extract(root *Tree) Lookup {
	out := Lookup{}
	if root == nil || root.kind != KindAnd {
		return out
	}
	for _, child := range root.children {
		key := representativeKey(child)
		if key == "" {
			continue
		}
		out[key] = child
	}
	return out
}

// representativeKey unwraps exactly one logical level.
func representativeKey(t Tree) string {
	if t.IsLogical() {
		if len(t.children) == 0 {
			return ""
		}
		return t.children[0].Key()
	}
	return t.Key()
}
