package render_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/cupstats/internal/adapters/render"
	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/recorder"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func savePNG(r *render.Renderer, p *plot.Plot, name string) []byte {
	path, err := r.Save(p, name)
	So(err, ShouldBeNil)
	So(filepath.Base(path), ShouldEqual, name+".png")
	b, err := os.ReadFile(path)
	So(err, ShouldBeNil)
	return b
}

// drawnText lists the strings p writes when drawn.
func drawnText(p *plot.Plot) []string {
	c := &recorder.Canvas{}
	p.Draw(draw.Canvas{Canvas: c, Rectangle: vg.Rectangle{Max: vg.Point{X: 4 * vg.Inch, Y: 3 * vg.Inch}}})
	var out []string
	for _, a := range c.Actions {
		if fs, ok := a.(*recorder.FillString); ok {
			out = append(out, fs.String)
		}
	}
	return out
}

func TestCharts(t *testing.T) {
	Convey("Given a renderer on a temporary directory", t, func() {
		dir, err := os.MkdirTemp("", "cupstats-plots-*")
		So(err, ShouldBeNil)
		Reset(func() { os.RemoveAll(dir) })
		r := render.New(filepath.Join(dir, "plots"), render.WithSize(4*vg.Inch, 3*vg.Inch))

		Convey("When drawing a count table as bars", func() {
			tbl := aggregate.NewTable("country", "titles")
			tbl.Append("Brazil", 5)
			tbl.Append("Italy", 4)
			p, err := render.Bars("Titles", "Titles", aggregate.Of(tbl, ""), "country", "titles")
			So(err, ShouldBeNil)

			Convey("Then a PNG is written", func() {
				So(bytes.HasPrefix(savePNG(r, p, "titles"), pngMagic), ShouldBeTrue)
			})
		})

		Convey("When drawing a series with a missing value", func() {
			tbl := aggregate.NewTable("year", "attendance")
			tbl.Append(1930, 590549.0)
			tbl.Append(1934, math.NaN())
			tbl.Append(1938, 375700.0)
			p, err := render.Lines("Attendance", "Year", "Attendance", aggregate.Of(tbl, ""), "year", "attendance", aggregate.LabelNoHostAttendance)
			So(err, ShouldBeNil)
			So(bytes.HasPrefix(savePNG(r, p, "attendance"), pngMagic), ShouldBeTrue)
		})

		Convey("When every point of a series is missing", func() {
			tbl := aggregate.NewTable("year", "attendance")
			tbl.Append(1950, math.NaN())
			p, err := render.Lines("Attendance", "Year", "Attendance", aggregate.Of(tbl, ""), "year", "attendance", aggregate.LabelNoHostAttendance)
			So(err, ShouldBeNil)

			Convey("Then the placeholder carries the caller's label", func() {
				text := drawnText(p)
				So(text, ShouldContain, aggregate.LabelNoHostAttendance)
				So(text, ShouldNotContain, aggregate.LabelNoGoals)
			})
		})

		Convey("When drawing an attendance distribution", func() {
			tbl := aggregate.NewTable("match_id", "attendance")
			tbl.Append(1096, 4444.0)
			tbl.Append(1099, 68346.0)
			tbl.Append(1200, 55000.0)
			tbl.Append(1300, math.NaN())
			p, err := render.BoxPlot("Match attendance", "Attendance", aggregate.Of(tbl, ""), "attendance")
			So(err, ShouldBeNil)
			So(bytes.HasPrefix(savePNG(r, p, "match_attendance"), pngMagic), ShouldBeTrue)

			_, err = render.BoxPlot("Match attendance", "Attendance", aggregate.Of(tbl, ""), "spectators")
			So(errors.Is(err, render.ErrMissingColumn), ShouldBeTrue)
		})

		Convey("When drawing a histogram", func() {
			tbl := aggregate.NewTable("bin_start", "bin_end", "matches")
			tbl.Append(0.0, 1.0, 3)
			tbl.Append(1.0, 2.0, 7)
			p, err := render.Histogram("Goals per match", "Goals", aggregate.Of(tbl, ""))
			So(err, ShouldBeNil)
			So(bytes.HasPrefix(savePNG(r, p, "histogram"), pngMagic), ShouldBeTrue)
		})

		Convey("When the chart has no data", func() {
			p, err := render.Bars("Titles", "Titles", aggregate.Empty(aggregate.LabelNoTitles), "country", "titles")
			So(err, ShouldBeNil)

			Convey("Then a placeholder keeps the chart title", func() {
				So(p.Title.Text, ShouldEqual, "Titles")
				So(bytes.HasPrefix(savePNG(r, p, "placeholder"), pngMagic), ShouldBeTrue)
			})
		})

		Convey("When a column is missing", func() {
			tbl := aggregate.NewTable("country")
			tbl.Append("Brazil")
			_, err := render.Bars("Titles", "Titles", aggregate.Of(tbl, ""), "country", "titles")
			So(errors.Is(err, render.ErrMissingColumn), ShouldBeTrue)
		})
	})
}

func TestTrendCharts(t *testing.T) {
	Convey("Given a successful prediction", t, func() {
		dir, err := os.MkdirTemp("", "cupstats-plots-*")
		So(err, ShouldBeNil)
		Reset(func() { os.RemoveAll(dir) })
		r := render.New(dir, render.WithSize(4*vg.Inch, 3*vg.Inch))

		res := trend.Result{
			Status:  trend.StatusOK,
			Summary: &trend.Summary{Type: trend.Goals, ReferenceYear: 2018, Forecast: 175},
			Prediction: &trend.PredictionSeries{
				Title:     "Goals Scored",
				YLabel:    "Goals",
				History:   []trend.Point{{X: 2010, Y: 145}, {X: 2014, Y: 171}, {X: 2018, Y: 169}},
				Line:      []trend.Point{{X: 2010, Y: 150}, {X: 2018, Y: 170}, {X: 2022, Y: 175}},
				Forecast:  trend.Point{X: 2022, Y: 175},
				Reference: trend.Point{X: 2018, Y: 169},
			},
			Performance: &trend.PerformanceSeries{
				Test:     []trend.Point{{X: 145, Y: 150}},
				Train:    []trend.Point{{X: 171, Y: 165}, {X: 169, Y: 170}},
				Diagonal: [2]trend.Point{{X: 145, Y: 145}, {X: 171, Y: 171}},
			},
		}

		Convey("Then both trend charts render", func() {
			p, err := render.Prediction(res)
			So(err, ShouldBeNil)
			So(bytes.HasPrefix(savePNG(r, p, "prediction"), pngMagic), ShouldBeTrue)

			p, err = render.Performance(res)
			So(err, ShouldBeNil)
			So(bytes.HasPrefix(savePNG(r, p, "performance"), pngMagic), ShouldBeTrue)
		})

		Convey("Then a result without series is rejected", func() {
			_, err := render.Prediction(trend.Result{Status: trend.StatusInsufficientData})
			So(errors.Is(err, render.ErrNoSeries), ShouldBeTrue)
			_, err = render.Performance(trend.Result{Status: trend.StatusError})
			So(errors.Is(err, render.ErrNoSeries), ShouldBeTrue)
		})
	})
}
