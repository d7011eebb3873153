// Package report exports descriptive statistics as a workbook and as CSV.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	SheetSummary            = "Summary"
	SheetGoalsPerEdition    = "GoalsPerEdition"
	SheetAttendancePerMatch = "AttendancePerMatch"
	SheetPlayersPerEdition  = "PlayersPerEdition"
)

// Custom statistic labels.
const (
	StatGoalsPerEdition    = "Total Goals per Edition"
	StatAttendancePerMatch = "Mean Attendance per Match"
	StatPlayersPerEdition  = "Total Players per Edition"
)

// ErrWrite is returned when an export cannot be written.
var ErrWrite = errors.New("failed to write report")

var summaryHeader = []string{"dataset", "column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}

type customTable struct {
	sheet, stat, dataset, valueHeader string
	rows                              []aggregate.YearMean
}

func customTables(d aggregate.Descriptive) []customTable {
	return []customTable{
		{SheetGoalsPerEdition, StatGoalsPerEdition, aggregate.DatasetMatches, "Total Goals", d.GoalsPerEdition},
		{SheetAttendancePerMatch, StatAttendancePerMatch, aggregate.DatasetMatches, "Mean Attendance", d.AttendancePerMatch},
		{SheetPlayersPerEdition, StatPlayersPerEdition, aggregate.DatasetAppearances, "Total Players", d.PlayersPerEdition},
	}
}

func summaryRow(c aggregate.ColumnSummary) []any {
	return []any{c.Dataset, c.Column, c.Count, cell(c.Mean), cell(c.Std), cell(c.Min), cell(c.Q1), cell(c.Median), cell(c.Q3), cell(c.Max)}
}

// cell leaves missing values empty.
func cell(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// Workbook builds the statistics workbook.
func Workbook(d aggregate.Descriptive) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetSummary, toAny(summaryHeader), summaryRows(d)); err != nil {
		return nil, err
	}

	for _, t := range customTables(d) {
		if _, err := f.NewSheet(t.sheet); err != nil {
			return nil, err
		}
		rows := make([][]any, len(t.rows))
		for i, r := range t.rows {
			rows[i] = []any{r.Year, cell(r.Value)}
		}
		if err := writeSheet(f, t.sheet, []any{"Year", t.valueHeader}, rows); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SaveWorkbook writes the workbook to path.
func SaveWorkbook(d aggregate.Descriptive, path string) error {
	f, err := Workbook(d)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}

func summaryRows(d aggregate.Descriptive) [][]any {
	rows := make([][]any, len(d.Columns))
	for i, c := range d.Columns {
		rows[i] = summaryRow(c)
	}
	return rows
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

// WriteCSV writes the column summaries followed by the custom per-edition
// statistics as one long CSV table.
func WriteCSV(d aggregate.Descriptive, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, summaryHeader...), "stat", "year", "value")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	for _, c := range d.Columns {
		rec := make([]string, 0, len(header))
		for _, v := range summaryRow(c) {
			rec = append(rec, format(v))
		}
		rec = append(rec, "", "", "")
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	for _, t := range customTables(d) {
		for _, r := range t.rows {
			rec := make([]string, len(header))
			rec[0] = t.dataset
			rec[len(rec)-3] = t.stat
			rec[len(rec)-2] = strconv.Itoa(r.Year)
			rec[len(rec)-1] = format(cell(r.Value))
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("%w: %w", ErrWrite, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
