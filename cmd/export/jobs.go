package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/cupstats/internal/adapters/mq/queue"
	"github.com/okian/cupstats/internal/adapters/render"
	"github.com/okian/cupstats/internal/adapters/report"
	app "github.com/okian/cupstats/internal/app"
	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/trend"
	"gonum.org/v1/plot"
)

// Job kinds, used as the metrics label.
const (
	kindChart  = "chart"
	kindReport = "report"
)

// Artifact file names.
const (
	workbookName = "world_cup_stats.xlsx"
	summaryName  = "world_cup_stats.csv"
)

type exporter struct {
	svc      *app.Service
	renderer *render.Renderer
	outDir   string
	year     int
	kind     string
}

// chartJob renders one chart table and saves it under name.
func (e *exporter) chartJob(name string, draw func(ctx context.Context) (*plot.Plot, error)) queue.Job {
	return queue.Job{
		ID:   name,
		Kind: kindChart,
		Run: func(ctx context.Context) (string, error) {
			p, err := draw(ctx)
			if err != nil {
				return "", fmt.Errorf("render %s: %w", name, err)
			}
			return e.renderer.Save(p, name)
		},
	}
}

func (e *exporter) jobs() []queue.Job {
	return []queue.Job{
		e.chartJob("goals_per_edition", func(ctx context.Context) (*plot.Plot, error) {
			res, err := e.svc.EditionGoals(ctx, "")
			if err != nil {
				return nil, err
			}
			return render.Bars("Goals per edition", "Goals", res, "year", "goals_scored")
		}),
		e.chartJob("attendance_per_edition", func(ctx context.Context) (*plot.Plot, error) {
			res, err := e.svc.EditionAttendance(ctx, "")
			if err != nil {
				return nil, err
			}
			return render.Lines("Attendance per edition", "Year", "Attendance", res, "year", "attendance", aggregate.LabelNoHostAttendance)
		}),
		e.chartJob("titles_per_country", func(ctx context.Context) (*plot.Plot, error) {
			res, err := e.svc.Titles(ctx, "")
			if err != nil {
				return nil, err
			}
			return render.Bars("Titles per country", "Titles", res, "country", "titles")
		}),
		e.chartJob("goals_per_match", func(ctx context.Context) (*plot.Plot, error) {
			res, err := e.svc.MatchGoals(ctx, "")
			if err != nil {
				return nil, err
			}
			return render.Histogram("Goals per match", "Goals", res)
		}),
		e.chartJob("match_attendance_box", func(ctx context.Context) (*plot.Plot, error) {
			av, err := e.svc.MatchAttendance(ctx, "")
			if err != nil {
				return nil, err
			}
			return render.BoxPlot("Match attendance", "Attendance", av.Matches, "attendance")
		}),
		e.chartJob("events_per_position", func(ctx context.Context) (*plot.Plot, error) {
			pe, err := e.svc.PlayerEvents(ctx, "")
			if err != nil {
				return nil, err
			}
			return render.Bars("Events per position", "Events", pe.Positions, "position", "events")
		}),
		e.chartJob("prediction", func(ctx context.Context) (*plot.Plot, error) {
			res, err := e.predict(ctx)
			if err != nil {
				return nil, err
			}
			return render.Prediction(res)
		}),
		e.chartJob("model_performance", func(ctx context.Context) (*plot.Plot, error) {
			res, err := e.predict(ctx)
			if err != nil {
				return nil, err
			}
			return render.Performance(res)
		}),
		{
			ID:   "workbook",
			Kind: kindReport,
			Run: func(ctx context.Context) (string, error) {
				d, err := e.describe(ctx)
				if err != nil {
					return "", err
				}
				path := filepath.Join(e.outDir, workbookName)
				return path, report.SaveWorkbook(d, path)
			},
		},
		{
			ID:   "summary_csv",
			Kind: kindReport,
			Run: func(ctx context.Context) (string, error) {
				d, err := e.describe(ctx)
				if err != nil {
					return "", err
				}
				path := filepath.Join(e.outDir, summaryName)
				return path, writeFile(path, func(f *os.File) error { return report.WriteCSV(d, f) })
			},
		},
	}
}

// predict runs the configured prediction. A non-ok status is not an error
// here; the renderer reports the missing series.
func (e *exporter) predict(ctx context.Context) (trend.Result, error) {
	res, err := e.svc.Predict(ctx, e.year, e.kind)
	if err != nil {
		return trend.Result{}, err
	}
	if !res.OK() {
		return res, fmt.Errorf("prediction %s: %s", res.Status, res.Message)
	}
	return res, nil
}

func (e *exporter) describe(ctx context.Context) (aggregate.Descriptive, error) {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return aggregate.Descriptive{}, fmt.Errorf("%w: %w", report.ErrWrite, err)
	}
	return e.svc.Describe(ctx)
}

// writeFile creates path, fills it with write and closes it. A failed close
// is a write error.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", report.ErrWrite, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", report.ErrWrite, path, err)
	}
	return nil
}
