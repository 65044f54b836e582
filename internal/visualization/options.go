// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package visualization

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/filter"
)

// ProjectionField is one entry of a projection.
type ProjectionField struct {
	Field string
	Value any
}

// Projection is an ordered field projection. It encodes as a JSON object
// whose keys keep insertion order.
type Projection []ProjectionField

// Set returns p with field set to v. Existing entries keep their position.
func (p Projection) Set(field string, v any) Projection {
	for i := range p {
		if p[i].Field == field {
			p[i].Value = v
			return p
		}
	}
	return append(p, ProjectionField{Field: field, Value: v})
}

// Fields returns the projected field names in order.
func (p Projection) Fields() []string {
	out := make([]string, len(p))
	for i, f := range p {
		out[i] = f.Field
	}
	return out
}

// MarshalJSON writes p as an object in insertion order.
func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("projection %q: %w", f.Field, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping its key order.
func (p *Projection) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("projection: expected object, got %v", tok)
	}
	out := Projection{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("projection: unexpected key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("projection %q: %w", key, err)
		}
		out = out.Set(key, v)
	}
	*p = out
	return nil
}

// Options are the visualization_options of a config. Projection is typed;
// every other key is carried through untouched in Extra.
type Options struct {
	Projection Projection
	Extra      map[string]any
}

const projectionKey = "projection"

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	out := Options{}
	if o.Projection != nil {
		out.Projection = make(Projection, len(o.Projection))
		for i, f := range o.Projection {
			out.Projection[i] = ProjectionField{Field: f.Field, Value: filter.CloneValue(f.Value)}
		}
	}
	if o.Extra != nil {
		out.Extra, _ = filter.CloneValue(o.Extra).(map[string]any)
	}
	return out
}

// MarshalJSON writes projection first, then the passthrough keys sorted.
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	if o.Projection != nil {
		proj, err := o.Projection.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"projection":`)
		buf.Write(proj)
		n++
	}

	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		if k != projectionKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.Extra[k])
		if err != nil {
			return nil, fmt.Errorf("visualization option %q: %w", k, err)
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON splits the projection from the passthrough keys.
func (o *Options) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Options{}
	for k, v := range raw {
		if k == projectionKey {
			if err := out.Projection.UnmarshalJSON(v); err != nil {
				return err
			}
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		var val any
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("visualization option %q: %w", k, err)
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = val
	}
	*o = out
	return nil
}
