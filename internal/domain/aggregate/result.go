// Package aggregate turns the immutable dataset into the small derived tables
// charts consume.
//
// Every operation is pure and deterministic. Data-shape problems never
// surface as errors: an empty or all-missing outcome is reported as a NoData
// result carrying a human readable label, which presenters render as a
// placeholder.
package aggregate

import (
	"encoding/json"
	"fmt"
	"math"
)

// Table is an ordered, column-named derived table. Cells hold string, int,
// float64 or nil (a missing numeric value).
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns, Rows: [][]any{}}
}

// Append adds a row. Missing floats are stored as nil.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(cells))
	for i, c := range cells {
		if f, ok := c.(float64); ok && math.IsNaN(f) {
			c = nil
		}
		row[i] = c
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of a column.
func (t *Table) Index(column string) (int, bool) {
	for i, c := range t.Columns {
		if c == column {
			return i, true
		}
	}
	return 0, false
}

// Floats returns a numeric column; nil and non-numeric cells become NaN.
func (t *Table) Floats(column string) []float64 {
	idx, ok := t.Index(column)
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = math.NaN()
		if !ok {
			continue
		}
		switch v := row[idx].(type) {
		case float64:
			out[i] = v
		case int:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		}
	}
	return out
}

// Strings returns a column formatted as text; nil cells become "".
func (t *Table) Strings(column string) []string {
	idx, ok := t.Index(column)
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if !ok || row[idx] == nil {
			continue
		}
		switch v := row[idx].(type) {
		case string:
			out[i] = v
		case float64:
			out[i] = fmt.Sprintf("%g", v)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// Result is either a derived table or the no-data sentinel.
type Result struct {
	Table  *Table
	NoData bool
	Label  string
}

// Of wraps a table; an empty table becomes NoData with label.
func Of(t *Table, label string) Result {
	if t == nil || t.Len() == 0 {
		return Empty(label)
	}
	return Result{Table: t}
}

// Empty returns the no-data sentinel.
func Empty(label string) Result {
	return Result{NoData: true, Label: label}
}

// MarshalJSON renders the sentinel as {"no_data":true,"label":...}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.NoData || r.Table == nil {
		return json.Marshal(struct {
			NoData bool   `json:"no_data"`
			Label  string `json:"label"`
		}{NoData: true, Label: r.Label})
	}
	return json.Marshal(struct {
		NoData  bool     `json:"no_data"`
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{Columns: r.Table.Columns, Rows: r.Table.Rows})
}

// Labels used for no-data placeholders.
const (
	LabelNoHostEditions    = "No edition found for this host country."
	LabelNoHostAttendance  = "No attendance data for this host country."
	LabelNoHostTitles      = "No title found for this host country."
	LabelNoTitles          = "No title available."
	LabelNoStageMatches    = "No match found for this stage."
	LabelNoStageAttendance = "No attendance data for this stage."
	LabelNoTeamPlayers     = "No player found for this team."
	LabelNoEvents          = "No event available."
	LabelNoEditionMatches  = "No match found for this edition."
	LabelNoCorrelation     = "No correlation found for this year."
	LabelNoGoals           = "No goal data available."
)
