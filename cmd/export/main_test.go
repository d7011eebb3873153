package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/cupstats/internal/adapters/render"
	"github.com/okian/cupstats/internal/adapters/report"
	app "github.com/okian/cupstats/internal/app"
	"github.com/okian/cupstats/internal/domain/dataset"
	"github.com/okian/cupstats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func editions(years ...int) []dataset.Edition {
	out := make([]dataset.Edition, len(years))
	for i, y := range years {
		out[i] = dataset.Edition{
			Year:           y,
			Country:        "Host" + string(rune('A'+i)),
			Winner:         []string{"Brazil", "Italy"}[i%2],
			GoalsScored:    float64(100 + 5*i),
			QualifiedTeams: 32,
			Attendance:     2e6 + 2.5e5*float64(i),
		}
	}
	return out
}

func newExporter(t *testing.T, ds *dataset.Dataset) *exporter {
	svc := app.New(app.WithDataset(ds), app.WithLogger(logger.Discard()))
	So(svc.Start(context.Background()), ShouldBeNil)
	dir := t.TempDir()
	return &exporter{
		svc:      svc,
		renderer: render.New(filepath.Join(dir, "plots")),
		outDir:   filepath.Join(dir, "output"),
		kind:     "total_attendance",
	}
}

func TestExport(t *testing.T) {
	Convey("Given a dataset with enough editions", t, func() {
		ds := dataset.New(
			editions(1990, 1994, 1998, 2002, 2006, 2010, 2014),
			[]dataset.Match{
				{Year: 1990, Stage: "Final", HomeGoals: 1, AwayGoals: 0, Attendance: 73603, MatchID: 1},
				{Year: 1994, Stage: "Group A", HomeGoals: 3, AwayGoals: 2, Attendance: 50000, MatchID: 2},
			},
			[]dataset.Appearance{
				{MatchID: 1, TeamInitials: "FRG", PlayerName: "Andreas BREHME", Position: "C", Event: "G85'"},
			},
		)
		e := newExporter(t, ds)

		Convey("Every job succeeds and writes its artifact", func() {
			jobs := e.jobs()
			So(jobs, ShouldHaveLength, 10)

			failed := export(context.Background(), jobs, 2, logger.Discard())
			So(failed, ShouldEqual, 0)

			for _, name := range []string{"goals_per_edition", "attendance_per_edition", "titles_per_country", "goals_per_match", "match_attendance_box", "events_per_position", "prediction", "model_performance"} {
				_, err := os.Stat(filepath.Join(e.renderer.Dir(), name+".png"))
				So(err, ShouldBeNil)
			}
			_, err := os.Stat(filepath.Join(e.outDir, workbookName))
			So(err, ShouldBeNil)
			_, err = os.Stat(filepath.Join(e.outDir, summaryName))
			So(err, ShouldBeNil)
		})
	})

	Convey("Given too few editions for a prediction", t, func() {
		ds := dataset.New(editions(2010, 2014), nil, nil)
		e := newExporter(t, ds)

		Convey("Only the prediction charts fail and the rest are still written", func() {
			failed := export(context.Background(), e.jobs(), 1, logger.Discard())
			So(failed, ShouldEqual, 2)

			_, err := os.Stat(filepath.Join(e.renderer.Dir(), "goals_per_edition.png"))
			So(err, ShouldBeNil)
			_, err = os.Stat(filepath.Join(e.renderer.Dir(), "prediction.png"))
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})

	Convey("An unknown prediction type fails only the prediction jobs", t, func() {
		ds := dataset.New(editions(1990, 1994, 1998), nil, nil)
		e := newExporter(t, ds)
		e.kind = "corners"

		failed := export(context.Background(), e.jobs(), 3, logger.Discard())
		So(failed, ShouldEqual, 2)
	})
}

func TestWriteFile(t *testing.T) {
	Convey("Given a target file", t, func() {
		path := filepath.Join(t.TempDir(), summaryName)

		Convey("When the writer succeeds the content is kept", func() {
			err := writeFile(path, func(f *os.File) error {
				_, err := f.WriteString("stat,value\n")
				return err
			})
			So(err, ShouldBeNil)
			b, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "stat,value\n")
		})

		Convey("When the writer fails its error is returned", func() {
			boom := errors.New("boom")
			err := writeFile(path, func(*os.File) error { return boom })
			So(errors.Is(err, boom), ShouldBeTrue)
		})

		Convey("When closing fails it is reported as a write error", func() {
			err := writeFile(path, func(f *os.File) error { return f.Close() })
			So(errors.Is(err, report.ErrWrite), ShouldBeTrue)
			So(errors.Is(err, os.ErrClosed), ShouldBeTrue)
		})

		Convey("When the directory does not exist", func() {
			err := writeFile(filepath.Join(path, "missing", summaryName), func(*os.File) error { return nil })
			So(errors.Is(err, report.ErrWrite), ShouldBeTrue)
		})
	})
}
