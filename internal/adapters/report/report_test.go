package report_test

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/cupstats/internal/adapters/report"
	"github.com/okian/cupstats/internal/domain/aggregate"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func descriptive() aggregate.Descriptive {
	return aggregate.Descriptive{
		Columns: []aggregate.ColumnSummary{
			{Dataset: aggregate.DatasetEditions, Column: "GoalsScored", Summary: aggregate.Summarize([]float64{70, 70, 84, 88})},
			{Dataset: aggregate.DatasetAppearances, Column: "Shirt Number", Summary: aggregate.Summarize([]float64{7})},
		},
		GoalsPerEdition:    []aggregate.YearMean{{Year: 1930, Value: 70}, {Year: 1934, Value: 70}},
		AttendancePerMatch: []aggregate.YearMean{{Year: 1930, Value: 32808.3}, {Year: 1934, Value: math.NaN()}},
		PlayersPerEdition:  []aggregate.YearMean{{Year: 1930, Value: 25}},
	}
}

func TestWorkbook(t *testing.T) {
	Convey("Given descriptive statistics", t, func() {
		d := descriptive()

		Convey("When saving the workbook", func() {
			dir, err := os.MkdirTemp("", "cupstats-report-*")
			So(err, ShouldBeNil)
			Reset(func() { os.RemoveAll(dir) })
			path := filepath.Join(dir, "descriptive_stats.xlsx")
			So(report.SaveWorkbook(d, path), ShouldBeNil)

			f, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			defer f.Close()

			Convey("Then every sheet is present", func() {
				So(f.GetSheetList(), ShouldResemble, []string{
					report.SheetSummary, report.SheetGoalsPerEdition,
					report.SheetAttendancePerMatch, report.SheetPlayersPerEdition,
				})
			})

			Convey("Then the summary rows hold the statistics", func() {
				rows, err := f.GetRows(report.SheetSummary)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0][0], ShouldEqual, "dataset")
				So(rows[1][1], ShouldEqual, "GoalsScored")
				So(rows[1][2], ShouldEqual, "4")
				So(rows[1][3], ShouldEqual, "78")
			})

			Convey("Then missing values are left empty", func() {
				v, err := f.GetCellValue(report.SheetAttendancePerMatch, "B3")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "")
				v, err = f.GetCellValue(report.SheetSummary, "E3")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "")
			})
		})

		Convey("When saving into a missing directory", func() {
			err := report.SaveWorkbook(d, filepath.Join(os.TempDir(), "cupstats-missing-dir", "x", "stats.xlsx"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given descriptive statistics", t, func() {
		var buf bytes.Buffer
		So(report.WriteCSV(descriptive(), &buf), ShouldBeNil)

		records, err := csv.NewReader(&buf).ReadAll()
		So(err, ShouldBeNil)

		Convey("Then summaries come first and custom stats follow", func() {
			So(len(records), ShouldEqual, 1+2+5)
			So(records[0][len(records[0])-3:], ShouldResemble, []string{"stat", "year", "value"})
			So(records[1][0], ShouldEqual, aggregate.DatasetEditions)
			So(records[3][0], ShouldEqual, aggregate.DatasetMatches)
			So(records[3][10:], ShouldResemble, []string{report.StatGoalsPerEdition, "1930", "70"})
			So(records[6][12], ShouldEqual, "")
			So(records[7][10:], ShouldResemble, []string{report.StatPlayersPerEdition, "1930", "25"})
		})
	})
}
