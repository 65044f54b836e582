// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

/*
Package filter models the boolean filter trees accepted by the dataset query
endpoint and the field-keyed lookups the console edits them through.

# Wire Form

Every node is a JSON object with exactly one key:

	{"$and": [node, ...]}            conjunction
	{"$or":  [node, ...]}            disjunction
	{"$not": node}                   negation
	{"<field>": {"<op>": value}}     field predicate

Operators are opaque strings ($eq, $gt, $lt, $in, $like, ...). Values are
kept as decoded JSON (numbers as json.Number) and re-emitted unchanged.
Shapes that do not fit the grammar are kept verbatim as raw nodes so a
stored request survives a decode/encode cycle byte for byte in meaning;
the backend is the one that rejects them.

# Extraction

Extract flattens a top-level $and into a Lookup keyed by a representative
field per child. Nested $and/$or children are addressed by the key of their
first element, one level deep only. This is the shape the editor produces
for two-sided ranges:

	{"$and": [{"$and": [{"d": {"$gt": "a"}}, {"d": {"$lt": "b"}}]}]}
	=> {"d": {"$and": [...]}}

Deeper nesting is not unwrapped.
*/
package filter
