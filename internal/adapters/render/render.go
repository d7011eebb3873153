// Package render draws chart tables and trend series as PNG files.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/trend"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	defaultWidth  = 10 * vg.Inch
	defaultHeight = 6 * vg.Inch
	titleSize     = 16
)

var (
	barColor       = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	historyColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	forecastColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	referenceColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	trainColor     = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the image size.
func WithSize(width, height vg.Length) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// Renderer saves charts into a directory.
type Renderer struct {
	dir    string
	width  vg.Length
	height vg.Length
}

// New creates a renderer writing into dir.
func New(dir string, opts ...Option) *Renderer {
	r := &Renderer{dir: dir, width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the output directory.
func (r *Renderer) Dir() string { return r.dir }

// Save writes p as <name>.png and returns the path.
func (r *Renderer) Save(p *plot.Plot, name string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSave, err)
	}
	path := filepath.Join(r.dir, name+".png")
	if err := p.Save(r.width, r.height, path); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSave, path, err)
	}
	return path, nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(titleSize)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// Placeholder draws an empty chart carrying a no-data label.
func Placeholder(title, label string) (*plot.Plot, error) {
	p := newPlot(title, "", "")
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{label},
	})
	if err != nil {
		return nil, err
	}
	labels.TextStyle[0].XAlign = draw.XCenter
	p.Add(labels)
	return p, nil
}

// Bars draws a bar per row of res using one text and one numeric column.
func Bars(title, yLabel string, res aggregate.Result, labelColumn, valueColumn string) (*plot.Plot, error) {
	if res.NoData {
		return Placeholder(title, res.Label)
	}
	if err := requireColumns(res.Table, labelColumn, valueColumn); err != nil {
		return nil, err
	}
	labels := res.Table.Strings(labelColumn)
	values := plotter.Values(res.Table.Floats(valueColumn))
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = 0
		}
	}

	p := newPlot(title, "", yLabel)
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars, plotter.NewGrid())
	p.NominalX(labels...)
	if len(labels) > 8 {
		p.X.Tick.Label.Rotation = 0.8
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return p, nil
}

// Lines draws res as a line with point markers over two numeric columns.
// Rows with a missing value are skipped; when none is left the placeholder
// carries emptyLabel.
func Lines(title, xLabel, yLabel string, res aggregate.Result, xColumn, yColumn, emptyLabel string) (*plot.Plot, error) {
	if res.NoData {
		return Placeholder(title, res.Label)
	}
	if err := requireColumns(res.Table, xColumn, yColumn); err != nil {
		return nil, err
	}
	xs, ys := res.Table.Floats(xColumn), res.Table.Floats(yColumn)
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(pts) == 0 {
		return Placeholder(title, emptyLabel)
	}

	p := newPlot(title, xLabel, yLabel)
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = historyColor
	points.Color = historyColor
	p.Add(line, points, plotter.NewGrid())
	return p, nil
}

// BoxPlot draws the distribution of one numeric column as a box with
// whiskers. Missing values are skipped.
func BoxPlot(title, yLabel string, res aggregate.Result, valueColumn string) (*plot.Plot, error) {
	if res.NoData {
		return Placeholder(title, res.Label)
	}
	if err := requireColumns(res.Table, valueColumn); err != nil {
		return nil, err
	}
	values := make(plotter.Values, 0, res.Table.Len())
	for _, v := range res.Table.Floats(valueColumn) {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}

	p := newPlot(title, "", yLabel)
	box, err := plotter.NewBoxPlot(vg.Points(60), 0, values)
	if err != nil {
		return nil, err
	}
	box.FillColor = barColor
	p.Add(box, plotter.NewGrid())
	p.NominalX(yLabel)
	return p, nil
}

// Histogram draws binned counts with bin ranges as labels.
func Histogram(title, xLabel string, res aggregate.Result) (*plot.Plot, error) {
	if res.NoData {
		return Placeholder(title, res.Label)
	}
	if err := requireColumns(res.Table, "bin_start", "bin_end", "matches"); err != nil {
		return nil, err
	}
	starts, ends := res.Table.Floats("bin_start"), res.Table.Floats("bin_end")
	labels := make([]string, len(starts))
	for i := range starts {
		labels[i] = fmt.Sprintf("%.1f-%.1f", starts[i], ends[i])
	}
	p, err := Bars(title, "Matches", aggregate.Of(res.Table, res.Label), "matches", "matches")
	if err != nil {
		return nil, err
	}
	p.X.Label.Text = xLabel
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// Prediction draws history, regression line, forecast and reference points.
func Prediction(res trend.Result) (*plot.Plot, error) {
	if res.Prediction == nil || res.Summary == nil {
		return nil, ErrNoSeries
	}
	s := res.Prediction
	p := newPlot(s.Title, "Year", s.YLabel)

	history, err := plotter.NewScatter(xys(s.History))
	if err != nil {
		return nil, err
	}
	history.GlyphStyle.Color = historyColor
	history.GlyphStyle.Shape = draw.CircleGlyph{}

	line, err := plotter.NewLine(xys(s.Line))
	if err != nil {
		return nil, err
	}
	line.Color = trainColor

	forecast, err := plotter.NewScatter(xys([]trend.Point{s.Forecast}))
	if err != nil {
		return nil, err
	}
	forecast.GlyphStyle.Color = forecastColor
	forecast.GlyphStyle.Radius = vg.Points(6)
	forecast.GlyphStyle.Shape = draw.CircleGlyph{}

	reference, err := plotter.NewScatter(xys([]trend.Point{s.Reference}))
	if err != nil {
		return nil, err
	}
	reference.GlyphStyle.Color = referenceColor
	reference.GlyphStyle.Radius = vg.Points(5)
	reference.GlyphStyle.Shape = draw.CircleGlyph{}

	refLabel, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: s.Reference.X, Y: s.Reference.Y}},
		Labels: []string{fmt.Sprintf("Actual %d", res.Summary.ReferenceYear)},
	})
	if err != nil {
		return nil, err
	}

	p.Add(plotter.NewGrid(), history, line, forecast, reference, refLabel)
	p.Legend.Add("History", history)
	p.Legend.Add("Regression", line)
	p.Legend.Add("Prediction", forecast)
	p.Legend.Add(fmt.Sprintf("Actual %d", res.Summary.ReferenceYear), reference)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// Performance draws predicted against actual values with the identity line.
func Performance(res trend.Result) (*plot.Plot, error) {
	if res.Performance == nil {
		return nil, ErrNoSeries
	}
	s := res.Performance
	p := newPlot("Model Performance", "Actual", "Predicted")

	test, err := plotter.NewScatter(xys(s.Test))
	if err != nil {
		return nil, err
	}
	test.GlyphStyle.Color = historyColor
	test.GlyphStyle.Shape = draw.CircleGlyph{}

	train, err := plotter.NewScatter(xys(s.Train))
	if err != nil {
		return nil, err
	}
	train.GlyphStyle.Color = trainColor
	train.GlyphStyle.Shape = draw.CircleGlyph{}

	diagonal, err := plotter.NewLine(xys(s.Diagonal[:]))
	if err != nil {
		return nil, err
	}
	diagonal.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	p.Add(plotter.NewGrid(), test, train, diagonal)
	p.Legend.Add("Test", test)
	p.Legend.Add("Train", train)
	p.Legend.Add("Perfect", diagonal)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

func xys(points []trend.Point) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, pt := range points {
		out[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return out
}

func requireColumns(t *aggregate.Table, columns ...string) error {
	for _, c := range columns {
		if _, ok := t.Index(c); !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return nil
}
