// Command export renders the dashboard charts and writes the descriptive
// statistics report without starting the HTTP server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/okian/cupstats/internal/adapters/mq/queue"
	"github.com/okian/cupstats/internal/adapters/mq/worker"
	"github.com/okian/cupstats/internal/adapters/render"
	"github.com/okian/cupstats/internal/adapters/repository"
	app "github.com/okian/cupstats/internal/app"
	"github.com/okian/cupstats/internal/config"
	"github.com/okian/cupstats/internal/domain/trend"
	"github.com/okian/cupstats/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	workers := flag.Int("workers", 0, "number of export workers (0 = one per CPU)")
	year := flag.Int("year", 0, "prediction target year (0 = configured default)")
	kind := flag.String("type", trend.TotalAttendance.String(), "prediction type")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Logs go to stderr.
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Named("export")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	location := cfg.DataDir
	if cfg.Source == config.SourcePostgres {
		location = cfg.PostgresDSN
	}
	store, err := repository.Open(cfg.Source, location,
		repository.WithGoalEventsOnly(true),
		repository.WithLogger(log),
	)
	if err != nil {
		log.Error(ctx, "invalid dataset source", logger.Error(err))
		return 1
	}

	svc := app.New(
		app.WithStore(store),
		app.WithLogger(log),
		app.WithPredictionYears(cfg.DefaultPredictionYear, cfg.MinPredictionYear, cfg.MaxPredictionYear),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to load dataset", logger.Error(err))
		return 1
	}
	defer svc.Stop()

	e := &exporter{
		svc:      svc,
		renderer: render.New(cfg.PlotsDir),
		outDir:   cfg.OutputDir,
		year:     *year,
		kind:     *kind,
	}
	failed := export(ctx, e.jobs(), *workers, log)
	log.Info(ctx, "export finished", logger.Int("failed", failed))
	return 0
}

// export runs jobs on a worker pool and returns how many failed. Failures are
// logged and skipped.
func export(ctx context.Context, jobs []queue.Job, workers int, log logger.Logger) int {
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(jobs)))
	var failed atomic.Int64
	reporter := worker.ReporterFunc(func(ctx context.Context, o worker.Outcome) {
		if o.Err != nil {
			failed.Add(1)
			return
		}
		log.Info(ctx, "saved", logger.String("job", o.Job.ID), logger.String("path", o.Path), logger.Duration("took", o.Duration))
	})

	pool := worker.NewPool(workers, q, reporter, log)
	pool.Start(ctx)
	for _, j := range jobs {
		if err := q.Enqueue(ctx, j); err != nil {
			log.Warn(ctx, "job not queued", logger.String("job", j.ID), logger.Error(err))
			failed.Add(1)
		}
	}
	if err := pool.Shutdown(ctx); err != nil {
		log.Error(ctx, "export workers did not finish", logger.Error(err))
	}
	return int(failed.Load())
}
