// Package service wires the dataset, the aggregation engine and the trend
// engine behind the operations the presenters call.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cupstats/internal/adapters/repository"
	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/dataset"
	"github.com/okian/cupstats/internal/domain/trend"
	"github.com/okian/cupstats/pkg/logger"
	"github.com/okian/cupstats/pkg/metrics"
)

// Default prediction year bounds.
const (
	defaultPredictionYear = 2030
	defaultMinYear        = 2025
	defaultMaxYear        = 2050
)

// Chart names used for metrics and logs.
const (
	ChartEditionGoals      = "edition_goals"
	ChartEditionAttendance = "edition_attendance"
	ChartTitles            = "titles"
	ChartEditionMetrics    = "edition_metrics"
	ChartStages            = "stages"
	ChartMatchGoals        = "match_goals"
	ChartMatchAttendance   = "match_attendance"
	ChartAttendanceSummary = "attendance_summary"
	ChartMatchStats        = "match_stats"
	ChartCorrelation       = "correlation"
	ChartGoalsByYear       = "goals_by_year"
	ChartPlayers           = "players"
	ChartPositions         = "positions"
)

// Service serves chart tables and predictions from a dataset loaded once at
// start.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	engine *trend.Engine
	data   *dataset.Dataset

	// Configuration
	defaultYear int
	minYear     int
	maxYear     int

	// State
	started   bool
	startedAt time.Time

	// Counters
	aggregations atomic.Int64
	noData       atomic.Int64
	predictions  sync.Map // trend.Status -> *atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the store the dataset is loaded from.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDataset uses an already loaded dataset instead of a store.
func WithDataset(ds *dataset.Dataset) Option {
	return func(s *Service) {
		s.data = ds
	}
}

// WithEngine sets the trend engine.
func WithEngine(engine *trend.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithPredictionYears sets the default prediction year and the accepted range.
// Inconsistent values are ignored.
func WithPredictionYears(def, minYear, maxYear int) Option {
	return func(s *Service) {
		if minYear <= def && def <= maxYear {
			s.defaultYear, s.minYear, s.maxYear = def, minYear, maxYear
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		store:       repository.NewCSVStore("data"),
		engine:      trend.New(),
		defaultYear: defaultPredictionYear,
		minYear:     defaultMinYear,
		maxYear:     defaultMaxYear,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset. Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.data == nil {
		s.logger.Info(ctx, "loading dataset...")
		start := time.Now()
		ds, err := s.store.Load(ctx)
		if err != nil {
			s.logger.Error(ctx, "dataset load failed", logger.Error(err))
			return fmt.Errorf("load dataset: %w", err)
		}
		metrics.RecordDatasetLoadDuration(float64(time.Since(start).Milliseconds()))
		s.data = ds
	}

	counts := s.data.Counts()
	metrics.UpdateDatasetRows(aggregate.DatasetEditions, counts.Editions)
	metrics.UpdateDatasetRows(aggregate.DatasetMatches, counts.Matches)
	metrics.UpdateDatasetRows(aggregate.DatasetAppearances, counts.Appearances)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "analytics service started",
		logger.Int("editions", counts.Editions),
		logger.Int("matches", counts.Matches),
		logger.Int("appearances", counts.Appearances),
	)
	return nil
}

// Stop marks the service as stopped. The dataset is kept.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// Dataset returns the loaded dataset.
func (s *Service) Dataset() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.data, nil
}

// Counts returns the dataset row counts.
func (s *Service) Counts(_ context.Context) (dataset.Counts, error) {
	ds, err := s.Dataset()
	if err != nil {
		return dataset.Counts{}, err
	}
	return ds.Counts(), nil
}

// Options returns the distinct selector values.
func (s *Service) Options(_ context.Context) (dataset.Options, error) {
	ds, err := s.Dataset()
	if err != nil {
		return dataset.Options{}, err
	}
	return ds.Options(), nil
}

// chart runs one aggregation and records its outcome.
func (s *Service) chart(ctx context.Context, name string, build func(*dataset.Dataset) aggregate.Result) (aggregate.Result, error) {
	ds, err := s.Dataset()
	if err != nil {
		return aggregate.Result{}, err
	}
	res := build(ds)
	s.record(ctx, name, res)
	return res, nil
}

func (s *Service) record(ctx context.Context, name string, res aggregate.Result) {
	s.aggregations.Add(1)
	metrics.RecordAggregation(name, res.NoData)
	if res.NoData {
		s.noData.Add(1)
		s.logger.Debug(ctx, "chart has no data", logger.String("chart", name), logger.String("label", res.Label))
	}
}

// EditionGoals returns goals scored per edition, optionally for one host.
func (s *Service) EditionGoals(ctx context.Context, host string) (aggregate.Result, error) {
	return s.chart(ctx, ChartEditionGoals, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.EditionGoals(ds, aggregate.Text(host))
	})
}

// EditionAttendance returns attendance per edition, optionally for one host.
func (s *Service) EditionAttendance(ctx context.Context, host string) (aggregate.Result, error) {
	return s.chart(ctx, ChartEditionAttendance, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.EditionAttendance(ds, aggregate.Text(host))
	})
}

// Titles returns the title distribution, optionally for one host.
func (s *Service) Titles(ctx context.Context, host string) (aggregate.Result, error) {
	return s.chart(ctx, ChartTitles, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.Titles(ds, aggregate.Text(host))
	})
}

// EditionMetrics returns goals, attendance and qualified teams of one edition.
func (s *Service) EditionMetrics(ctx context.Context, year int) (aggregate.Result, error) {
	return s.chart(ctx, ChartEditionMetrics, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.EditionMetrics(ds, aggregate.Year(year))
	})
}

// StageDistribution returns the match count per stage.
func (s *Service) StageDistribution(ctx context.Context, stage string) (aggregate.Result, error) {
	return s.chart(ctx, ChartStages, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.StageDistribution(ds, aggregate.Text(stage))
	})
}

// MatchGoals returns the total goals histogram, optionally for one stage.
func (s *Service) MatchGoals(ctx context.Context, stage string) (aggregate.Result, error) {
	return s.chart(ctx, ChartMatchGoals, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.MatchGoalHistogram(ds, aggregate.Text(stage))
	})
}

// MatchAttendance returns per-match attendance and its five-number summary,
// optionally for one stage.
func (s *Service) MatchAttendance(ctx context.Context, stage string) (aggregate.AttendanceView, error) {
	ds, err := s.Dataset()
	if err != nil {
		return aggregate.AttendanceView{}, err
	}
	av := aggregate.MatchAttendance(ds, aggregate.Text(stage))
	s.record(ctx, ChartMatchAttendance, av.Matches)
	s.record(ctx, ChartAttendanceSummary, av.Summary)
	return av, nil
}

// MatchStats returns the match summary of one edition.
func (s *Service) MatchStats(ctx context.Context, year int) (aggregate.Result, error) {
	return s.chart(ctx, ChartMatchStats, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.EditionMatchStats(ds, aggregate.Year(year))
	})
}

// Correlation returns the per-year match goals joined with edition totals.
func (s *Service) Correlation(ctx context.Context, year int) (aggregate.Result, error) {
	return s.chart(ctx, ChartCorrelation, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.MatchGoalSummary(ds, aggregate.Year(year))
	})
}

// GoalsByYear returns total and mean match goals per edition.
func (s *Service) GoalsByYear(ctx context.Context, year int) (aggregate.Result, error) {
	return s.chart(ctx, ChartGoalsByYear, func(ds *dataset.Dataset) aggregate.Result {
		return aggregate.GoalsByYear(ds, aggregate.Year(year))
	})
}

// PlayerEvents returns the players of a team and their events per position.
func (s *Service) PlayerEvents(ctx context.Context, team string) (aggregate.PlayerEvents, error) {
	ds, err := s.Dataset()
	if err != nil {
		return aggregate.PlayerEvents{}, err
	}
	pe := aggregate.TeamPlayerEvents(ds, aggregate.Text(team))
	s.record(ctx, ChartPlayers, pe.Players)
	s.record(ctx, ChartPositions, pe.Positions)
	return pe, nil
}

// Describe returns descriptive statistics of the whole dataset.
func (s *Service) Describe(_ context.Context) (aggregate.Descriptive, error) {
	ds, err := s.Dataset()
	if err != nil {
		return aggregate.Descriptive{}, err
	}
	return aggregate.Describe(ds), nil
}

// PredictionYears returns the default year and accepted range.
func (s *Service) PredictionYears() (def, minYear, maxYear int) {
	return s.defaultYear, s.minYear, s.maxYear
}

// Predict forecasts the series named by predictionType for year. A zero year
// selects the default. Request problems are returned as errors wrapping
// ErrInvalidPrediction; data problems are reported in the result status.
func (s *Service) Predict(ctx context.Context, year int, predictionType string) (trend.Result, error) {
	ds, err := s.Dataset()
	if err != nil {
		return trend.Result{}, err
	}

	t, err := trend.ParsePredictionType(predictionType)
	if err != nil {
		return trend.Result{}, fmt.Errorf("%w: %w", ErrInvalidPrediction, err)
	}
	if year == 0 {
		year = s.defaultYear
	}
	if year < s.minYear || year > s.maxYear {
		return trend.Result{}, fmt.Errorf("%w: %w: %d not in [%d, %d]", ErrInvalidPrediction, ErrYearOutOfRange, year, s.minYear, s.maxYear)
	}

	start := time.Now()
	res := s.engine.Predict(ds, year, t)
	latency := float64(time.Since(start).Microseconds()) / 1000

	metrics.RecordPrediction(t.String(), string(res.Status), latency)
	s.countPrediction(res.Status)

	switch res.Status {
	case trend.StatusOK:
		metrics.UpdatePredictionForecast(t.String(), res.Summary.Forecast)
		s.logger.Debug(ctx, "prediction computed",
			logger.String("type", t.String()),
			logger.Int("year", year),
			logger.Float64("forecast", res.Summary.Forecast),
			logger.Float64("r2", res.Summary.R2),
			logger.Bool("optimistic", res.Summary.Optimistic),
		)
	case trend.StatusError:
		s.logger.Warn(ctx, "prediction failed",
			logger.String("type", t.String()),
			logger.Int("year", year),
			logger.String("message", res.Message),
		)
	default:
		s.logger.Info(ctx, "prediction skipped",
			logger.String("type", t.String()),
			logger.String("status", string(res.Status)),
		)
	}
	return res, nil
}

func (s *Service) countPrediction(status trend.Status) {
	v, _ := s.predictions.LoadOrStore(status, new(atomic.Int64))
	v.(*atomic.Int64).Add(1) //nolint:forcetypeassert // only *atomic.Int64 is stored
}

// IsInvalidRequest reports whether err was caused by the caller's input.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidPrediction)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"aggregations": s.aggregations.Load(),
		"noData":       s.noData.Load(),
	}

	predictions := map[string]int64{}
	s.predictions.Range(func(k, v any) bool {
		predictions[string(k.(trend.Status))] = v.(*atomic.Int64).Load() //nolint:forcetypeassert // keys and values are written by countPrediction
		return true
	})
	stats["predictions"] = predictions

	if s.started {
		counts := s.data.Counts()
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
		stats["editions"] = counts.Editions
		stats["matches"] = counts.Matches
		stats["appearances"] = counts.Appearances
	}

	return stats
}
