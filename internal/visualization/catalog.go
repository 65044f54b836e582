// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package visualization

import (
	"fmt"

	"github.com/tomtom215/dataconsole/internal/reldate"
)

// Choice is a selectable value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Visualization types.
const (
	TypeTable = "table"
	TypeLine  = "line"
	TypeBar   = "bar"
	TypePivot = "pivot"
	TypePie   = "pie"
	TypeMap   = "map"
)

var types = []Choice{
	{TypeTable, "Table"},
	{TypeLine, "Line Chart"},
	{TypeBar, "Bar Chart"},
	{TypePivot, "Pivot Table"},
	{TypePie, "Pie Chart"},
	{TypeMap, "Map"},
}

// Types returns the supported visualization types.
func Types() []Choice {
	return append([]Choice(nil), types...)
}

// OverlayTypes returns the types that can be drawn as an overlay.
func OverlayTypes() []Choice {
	var out []Choice
	for _, t := range types {
		if t.Value == TypeLine || t.Value == TypeBar {
			out = append(out, t)
		}
	}
	return out
}

// DisplayName returns the label of a visualization type, or "" when the type
// is unknown.
func DisplayName(typ string) string {
	for _, t := range types {
		if t.Value == typ {
			return t.Label
		}
	}
	return ""
}

// AggregationFunctions returns the aggregate functions offered by the editor.
// "rows" is sent to the backend as count.
func AggregationFunctions() []Choice {
	return []Choice{
		{"rows", "Rows"},
		{"count", "Count"},
		{"sum", "Sum"},
		{"min", "Min"},
		{"max", "Max"},
	}
}

// DetectionAlgorithms returns the anomaly detectors a line chart can apply.
func DetectionAlgorithms() []Choice {
	return []Choice{
		{"cdc1", "CDC1"},
		{"cdc2", "CDC2"},
		{"cdc3", "CDC3"},
		{"cusum", "CUSUM"},
		{"ewma", "EWMA"},
	}
}

// LastNBackOptions returns the relative-date tokens with their labels.
func LastNBackOptions() []Choice {
	toks := reldate.Tokens()
	out := make([]Choice, len(toks))
	for i, tok := range toks {
		out[i] = Choice{Value: tok.Name, Label: fmt.Sprintf("Last %d Days", tok.Days)}
	}
	return out
}
