// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package mockapi

import (
	"bytes"
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/filter"
	"github.com/tomtom215/dataconsole/internal/models"
)

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// evaluate runs q over rows: filter, group, order, project, page. Total is
// the number of rows (or groups) before paging.
func evaluate(q models.DatasetQuery, rows []map[string]any) (models.QueryRows, error) {
	matched := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if q.Request == nil {
			matched = append(matched, row)
			continue
		}
		ok, err := match(*q.Request, row)
		if err != nil {
			return models.QueryRows{}, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	if q.GroupBy != nil {
		grouped, err := group(q.GroupBy, matched)
		if err != nil {
			return models.QueryRows{}, err
		}
		matched = grouped
	}
	if err := order(q.OrderBy, matched); err != nil {
		return models.QueryRows{}, err
	}
	if q.GroupBy == nil && len(q.Projection) > 0 {
		matched = project(q.Projection, matched)
	}

	total := len(matched)
	start := 0
	if q.Offset != nil && *q.Offset > 0 {
		start = min(*q.Offset, total)
	}
	end := total
	if q.Limit != nil && *q.Limit >= 0 {
		end = min(start+*q.Limit, total)
	}
	return models.QueryRows{Total: total, Values: matched[start:end]}, nil
}

func match(t filter.Tree, row map[string]any) (bool, error) {
	switch t.Kind() {
	case filter.KindNone:
		return true, nil
	case filter.KindAnd:
		for _, c := range t.Children() {
			ok, err := match(c, row)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case filter.KindOr:
		for _, c := range t.Children() {
			ok, err := match(c, row)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return len(t.Children()) == 0, nil
	case filter.KindNot:
		ok, err := match(t.Children()[0], row)
		return !ok, err
	case filter.KindPredicate:
		if t.Operator() == "" {
			return false, fmt.Errorf("unsupported filter on %s", t.Field())
		}
		return predicate(t.Operator(), row[t.Field()], t.Value())
	default:
		return false, fmt.Errorf("unsupported filter node %s", t.Kind())
	}
}

func predicate(op string, got, want any) (bool, error) {
	switch op {
	case filter.OpEq, filter.OpIs:
		return equal(got, want), nil
	case filter.OpNe, filter.OpIsNot:
		return !equal(got, want), nil
	case filter.OpGt, filter.OpGe, filter.OpLt, filter.OpLe:
		c, ok := compare(got, want)
		if !ok {
			return false, nil
		}
		switch op {
		case filter.OpGt:
			return c > 0, nil
		case filter.OpGe:
			return c >= 0, nil
		case filter.OpLt:
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case filter.OpIn, filter.OpNotIn:
		list, ok := want.([]any)
		if !ok {
			return false, fmt.Errorf("%s expects a list", op)
		}
		found := slices.ContainsFunc(list, func(v any) bool { return equal(got, v) })
		return found == (op == filter.OpIn), nil
	case filter.OpLike, filter.OpILike, filter.OpNotLike, filter.OpNotILike:
		pattern, ok := want.(string)
		if !ok {
			return false, fmt.Errorf("%s expects a string", op)
		}
		s, ok := got.(string)
		if !ok {
			return false, nil
		}
		fold := op == filter.OpILike || op == filter.OpNotILike
		hit := likeRegexp(pattern, fold).MatchString(s)
		return hit == (op == filter.OpLike || op == filter.OpILike), nil
	case filter.OpStartsWith, filter.OpEndsWith, filter.OpContains:
		s, ok1 := got.(string)
		sub, ok2 := want.(string)
		if !ok1 || !ok2 {
			return false, nil
		}
		switch op {
		case filter.OpStartsWith:
			return strings.HasPrefix(s, sub), nil
		case filter.OpEndsWith:
			return strings.HasSuffix(s, sub), nil
		default:
			return strings.Contains(s, sub), nil
		}
	default:
		return false, fmt.Errorf("operator %s is not supported", op)
	}
}

// likeRegexp translates a SQL LIKE pattern.
func likeRegexp(pattern string, fold bool) *regexp.Regexp {
	var b strings.Builder
	if fold {
		b.WriteString("(?is)")
	} else {
		b.WriteString("(?s)")
	}
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return regexp.MustCompile(b.String())
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return false
}

// compare orders numbers numerically, strings lexically and false before
// true. Mixed types are not comparable.
func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		y, ok := number(b)
		if !ok {
			return 0, false
		}
		return cmp.Compare(x, y), true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func group(gb *models.GroupBy, rows []map[string]any) ([]map[string]any, error) {
	type bucket struct {
		key  map[string]any
		rows []map[string]any
	}
	var order []string
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		key := make(map[string]any, len(gb.Fields))
		parts := make([]string, 0, len(gb.Fields))
		for _, f := range gb.Fields {
			key[f] = row[f]
			parts = append(parts, fmt.Sprintf("%T:%v", row[f], row[f]))
		}
		id := strings.Join(parts, "\x00")
		b, ok := buckets[id]
		if !ok {
			b = &bucket{key: key}
			buckets[id] = b
			order = append(order, id)
		}
		b.rows = append(b.rows, row)
	}

	out := make([]map[string]any, 0, len(order))
	for _, id := range order {
		b := buckets[id]
		row := b.key
		for name, agg := range gb.Aggregators {
			v, err := aggregate(agg, b.rows)
			if err != nil {
				return nil, err
			}
			row[name] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func aggregate(agg models.Aggregator, rows []map[string]any) (any, error) {
	switch agg.Function {
	case "count":
		if agg.Field == "" {
			return len(rows), nil
		}
		n := 0
		for _, r := range rows {
			if r[agg.Field] != nil {
				n++
			}
		}
		return n, nil
	case "sum":
		var total float64
		for _, r := range rows {
			if f, ok := number(r[agg.Field]); ok {
				total += f
			}
		}
		return json.Number(strconv.FormatFloat(total, 'f', -1, 64)), nil
	case "min", "max":
		var best any
		for _, r := range rows {
			v := r[agg.Field]
			if v == nil {
				continue
			}
			if best == nil {
				best = v
				continue
			}
			c, ok := compare(v, best)
			if ok && ((agg.Function == "min" && c < 0) || (agg.Function == "max" && c > 0)) {
				best = v
			}
		}
		return best, nil
	default:
		return nil, fmt.Errorf("group_by aggregator function %s is not supported", agg.Function)
	}
}

// order sorts rows stably; nil values sort last regardless of direction.
func order(orderBy [][]string, rows []map[string]any) error {
	for _, o := range orderBy {
		if len(o) != 2 || (o[1] != string(models.OrderAsc) && o[1] != string(models.OrderDesc)) {
			return fmt.Errorf("invalid order_by clause %v", o)
		}
	}
	if len(orderBy) == 0 {
		return nil
	}
	slices.SortStableFunc(rows, func(a, b map[string]any) int {
		for _, o := range orderBy {
			x, y := a[o[0]], b[o[0]]
			switch {
			case x == nil && y == nil:
				continue
			case x == nil:
				return 1
			case y == nil:
				return -1
			}
			c, _ := compare(x, y)
			if o[1] == string(models.OrderDesc) {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return nil
}

func project(projection map[string]bool, rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		p := make(map[string]any, len(projection))
		for f, keep := range projection {
			if keep {
				if v, ok := row[f]; ok {
					p[f] = v
				}
			}
		}
		out[i] = p
	}
	return out
}
