// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

// Package reldate resolves the relative-date tokens stored in filters and
// visualization configs ("LAST_30_DAYS_BACK" and friends) to calendar dates.
package reldate

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the format tokens resolve to.
const DateLayout = "2006-01-02"

// Token is a relative-date placeholder together with its day offset.
type Token struct {
	Name string
	Days int
}

var tokens = []Token{
	{Name: "LAST_30_DAYS_BACK", Days: 30},
	{Name: "LAST_60_DAYS_BACK", Days: 60},
	{Name: "LAST_90_DAYS_BACK", Days: 90},
	{Name: "LAST_180_DAYS_BACK", Days: 180},
	{Name: "LAST_365_DAYS_BACK", Days: 365},
}

// Tokens returns the supported tokens, shortest window first.
func Tokens() []Token {
	return append([]Token(nil), tokens...)
}

// Resolve returns the date for s if s is exactly a token.
func Resolve(s string, now time.Time) (string, bool) {
	for _, tok := range tokens {
		if s == tok.Name {
			return now.AddDate(0, 0, -tok.Days).Format(DateLayout), true
		}
	}
	return "", false
}

// Walk returns v with every string leaf that equals a token replaced by its
// date. Maps and slices are copied; v itself is left untouched. Strings that
// merely contain a token are not changed.
func Walk(v any, now time.Time) any {
	switch val := v.(type) {
	case string:
		if d, ok := Resolve(val, now); ok {
			return d
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = Walk(e, now)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Walk(e, now)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, e := range val {
			out[i] = Walk(e, now).(string)
		}
		return out
	default:
		return v
	}
}

// WalkJSON decodes doc, applies Walk and re-encodes it. Numbers keep their
// original text.
func WalkJSON(doc []byte, now time.Time) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(Walk(v, now))
}
