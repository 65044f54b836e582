// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package filter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// Logical operator keys.
const (
	OpAnd = "$and"
	OpOr  = "$or"
	OpNot = "$not"
)

// Common comparison operators understood by the backend.
const (
	OpEq         = "$eq"
	OpNe         = "$ne"
	OpGt         = "$gt"
	OpGe         = "$ge"
	OpLt         = "$lt"
	OpLe         = "$le"
	OpIn         = "$in"
	OpNotIn      = "$nin"
	OpLike       = "$like"
	OpILike      = "$ilike"
	OpNotLike    = "$notlike"
	OpNotILike   = "$notilike"
	OpStartsWith = "$startswith"
	OpEndsWith   = "$endswith"
	OpContains   = "$contains"
	OpIs         = "$is"
	OpIsNot      = "$isnot"
)

// ErrInvalidNode is returned when a wire node is not a JSON object.
var ErrInvalidNode = errors.New("filter node must be a JSON object")

// Kind identifies the shape of a Tree node.
type Kind int

const (
	// KindNone is the zero Tree. It encodes as null.
	KindNone Kind = iota
	KindPredicate
	KindAnd
	KindOr
	KindNot
	// KindRaw holds a node that does not match the grammar.
	KindRaw
)

// String returns the wire key for logical kinds and a label otherwise.
func (k Kind) String() string {
	switch k {
	case KindPredicate:
		return "predicate"
	case KindAnd:
		return OpAnd
	case KindOr:
		return OpOr
	case KindNot:
		return OpNot
	case KindRaw:
		return "raw"
	default:
		return "none"
	}
}

// Tree is one node of a filter expression. The zero value is an empty tree.
type Tree struct {
	kind     Kind
	field    string
	op       string
	value    any
	children []Tree
	// raw keeps the original bytes of a node, or of a predicate body that is
	// not a single-operator object.
	raw json.RawMessage
}

// Pred builds a field predicate.
func Pred(field, op string, value any) Tree {
	return Tree{kind: KindPredicate, field: field, op: op, value: value}
}

// And builds a conjunction of the given children.
func And(children ...Tree) Tree {
	return Tree{kind: KindAnd, children: children}
}

// Or builds a disjunction of the given children.
func Or(children ...Tree) Tree {
	return Tree{kind: KindOr, children: children}
}

// Not negates child.
func Not(child Tree) Tree {
	return Tree{kind: KindNot, children: []Tree{child}}
}

// Kind reports the node shape.
func (t Tree) Kind() Kind { return t.kind }

// IsZero reports whether t is the empty tree.
func (t Tree) IsZero() bool { return t.kind == KindNone }

// IsLogical reports whether t is an $and or $or node.
func (t Tree) IsLogical() bool { return t.kind == KindAnd || t.kind == KindOr }

// Children returns the operands of a logical or negation node.
// The returned slice must not be modified.
func (t Tree) Children() []Tree { return t.children }

// Field returns the predicate field name.
func (t Tree) Field() string { return t.field }

// Operator returns the predicate operator. It is empty for predicates whose
// body was kept raw.
func (t Tree) Operator() string { return t.op }

// Value returns the predicate operand.
func (t Tree) Value() any { return t.value }

// Key returns the single key of the node as it appears on the wire: the
// field name for predicates, the operator for logical and negation nodes.
// Raw nodes and the zero tree have no key.
func (t Tree) Key() string {
	switch t.kind {
	case KindPredicate:
		return t.field
	case KindAnd, KindOr, KindNot:
		return t.kind.String()
	default:
		return ""
	}
}

// MarshalJSON encodes the tree in wire form.
func (t Tree) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case KindNone:
		return []byte("null"), nil
	case KindRaw:
		return t.raw, nil
	case KindPredicate:
		if t.op == "" && t.raw != nil {
			return json.Marshal(map[string]json.RawMessage{t.field: t.raw})
		}
		return json.Marshal(map[string]map[string]any{t.field: {t.op: t.value}})
	case KindNot:
		var child Tree
		if len(t.children) > 0 {
			child = t.children[0]
		}
		return json.Marshal(map[string]Tree{OpNot: child})
	default:
		children := t.children
		if children == nil {
			children = []Tree{}
		}
		return json.Marshal(map[string][]Tree{t.kind.String(): children})
	}
}

// UnmarshalJSON decodes a wire-form node. Unrecognised shapes are kept raw.
func (t *Tree) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = Tree{}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if len(obj) != 1 {
		*t = Tree{kind: KindRaw, raw: append(json.RawMessage(nil), trimmed...)}
		return nil
	}

	for key, body := range obj {
		switch key {
		case OpAnd, OpOr:
			var children []Tree
			if err := json.Unmarshal(body, &children); err != nil {
				*t = Tree{kind: KindRaw, raw: append(json.RawMessage(nil), trimmed...)}
				return nil
			}
			kind := KindAnd
			if key == OpOr {
				kind = KindOr
			}
			*t = Tree{kind: kind, children: children}
		case OpNot:
			var child Tree
			if err := json.Unmarshal(body, &child); err != nil {
				*t = Tree{kind: KindRaw, raw: append(json.RawMessage(nil), trimmed...)}
				return nil
			}
			*t = Not(child)
		default:
			*t = decodePredicate(key, body)
		}
	}
	return nil
}

func decodePredicate(field string, body json.RawMessage) Tree {
	var ops map[string]json.RawMessage
	if err := json.Unmarshal(body, &ops); err != nil || len(ops) != 1 {
		return Tree{kind: KindPredicate, field: field, raw: append(json.RawMessage(nil), body...)}
	}
	for op, raw := range ops {
		value, err := decodeValue(raw)
		if err != nil {
			return Tree{kind: KindPredicate, field: field, raw: append(json.RawMessage(nil), body...)}
		}
		return Pred(field, op, value)
	}
	return Tree{}
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Lookup maps a representative field name to the filter fragment edited
// under it.
type Lookup map[string]Tree

// Keys returns the lookup keys in sorted order.
func (l Lookup) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the lookup.
func (l Lookup) Clone() Lookup {
	if l == nil {
		return nil
	}
	out := make(Lookup, len(l))
	for k, v := range l {
		out[k] = v.Clone()
	}
	return out
}

// Combine joins the lookup fragments under a single $and, in key order.
// An empty lookup gives the zero tree.
func (l Lookup) Combine() Tree {
	if len(l) == 0 {
		return Tree{}
	}
	children := make([]Tree, 0, len(l))
	for _, k := range l.Keys() {
		children = append(children, l[k].Clone())
	}
	return And(children...)
}
