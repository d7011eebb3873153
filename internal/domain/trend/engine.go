// Package trend fits a single-feature linear model of a per-edition series
// against year and forecasts a target year.
package trend

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/okian/cupstats/internal/domain/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultSeed         = 42
	defaultTestFraction = 0.3
	minPairs            = 3
	splitThreshold      = 6
)

// Option configures an Engine.
type Option func(*Engine)

// WithSeed sets the seed of the train/test permutation.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithTestFraction sets the share of pairs held out for evaluation.
func WithTestFraction(f float64) Option {
	return func(e *Engine) {
		if f > 0 && f < 1 {
			e.testFraction = f
		}
	}
}

// Engine computes trend predictions. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	seed         int64
	testFraction float64
}

// New creates an engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		seed:         defaultSeed,
		testFraction: defaultTestFraction,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Predict fits the series selected by t and forecasts year. It never panics:
// faults are reported as StatusError.
func (e *Engine) Predict(ds *dataset.Dataset, year int, t PredictionType) Result {
	cfg, err := t.Config()
	if err != nil {
		return failed(err)
	}
	return e.run(ds, year, t, cfg)
}

func (e *Engine) run(ds *dataset.Dataset, year int, t PredictionType, cfg TypeConfig) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(fmt.Errorf("prediction panicked: %v", r))
		}
	}()

	pairs := scaled(cfg.series(ds), cfg.Scale)
	if len(pairs) < minPairs {
		return Result{Status: StatusInsufficientData, Message: MessageInsufficientData}
	}

	train, test, optimistic := e.split(pairs)
	intercept, slope := fit(train)
	predict := func(x float64) float64 { return intercept + slope*x }

	forecast := math.Abs(predict(float64(year)))
	if !finite(intercept, slope, forecast) {
		return failed(ErrNonFiniteFit)
	}

	testPred := predictAll(test, predict)
	trainPred := predictAll(train, predict)
	r2 := rSquared(ys(test), testPred)
	rmse := floats.Distance(ys(test), testPred, 2) / math.Sqrt(float64(len(test)))

	ref := pairs[len(pairs)-1]
	summary := &Summary{
		Type:           t,
		Unit:           cfg.Unit,
		TargetYear:     year,
		Forecast:       forecast,
		ReferenceYear:  int(ref.X),
		ReferenceValue: ref.Y,
		R2:             r2,
		RMSE:           rmse,
		Intercept:      intercept,
		Slope:          slope,
		TrainSize:      len(train),
		TestSize:       len(test),
		Optimistic:     optimistic,
	}

	first := int(pairs[0].X)
	line := make([]Point, 0, max(year-first+1, 0))
	for y := first; y <= year; y++ {
		line = append(line, Point{X: float64(y), Y: predict(float64(y))})
	}

	actual := append(ys(train), ys(test)...)
	lo, hi := floats.Min(actual), floats.Max(actual)

	return Result{
		Status:  StatusOK,
		Summary: summary,
		Prediction: &PredictionSeries{
			Title:     cfg.Title,
			YLabel:    cfg.YLabel,
			History:   pairs,
			Line:      line,
			Forecast:  Point{X: float64(year), Y: forecast},
			Reference: ref,
		},
		Performance: &PerformanceSeries{
			Test:     zip(ys(test), testPred),
			Train:    zip(ys(train), trainPred),
			Diagonal: [2]Point{{X: lo, Y: lo}, {X: hi, Y: hi}},
		},
	}
}

// split holds out a seeded share of the pairs. Below splitThreshold the full
// set is used for both fitting and evaluation.
func (e *Engine) split(pairs []Point) (train, test []Point, optimistic bool) {
	n := len(pairs)
	if n < splitThreshold {
		return pairs, pairs, true
	}
	nTest := int(math.Ceil(e.testFraction * float64(n)))
	perm := rand.New(rand.NewSource(e.seed)).Perm(n) //nolint:gosec // reproducible split
	for i, idx := range perm {
		if i < nTest {
			test = append(test, pairs[idx])
		} else {
			train = append(train, pairs[idx])
		}
	}
	return train, test, false
}

// scaled drops pairs with a missing coordinate, divides values by scale and
// orders the result by year.
func scaled(points []Point, scale float64) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if dataset.IsMissing(p.X) || dataset.IsMissing(p.Y) || p.X == 0 {
			continue
		}
		out = append(out, Point{X: p.X, Y: p.Y / scale})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

func fit(train []Point) (intercept, slope float64) {
	return stat.LinearRegression(xs(train), ys(train), nil, false)
}

// rSquared is the coefficient of determination. A constant actual series
// scores 1 when predicted exactly and 0 otherwise.
func rSquared(actual, predicted []float64) float64 {
	if floats.Min(actual) == floats.Max(actual) {
		if floats.Distance(actual, predicted, 2) == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

func predictAll(points []Point, predict func(float64) float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = predict(p.X)
	}
	return out
}

func xs(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.X
	}
	return out
}

func ys(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Y
	}
	return out
}

func zip(x, y []float64) []Point {
	out := make([]Point, len(x))
	for i := range x {
		out[i] = Point{X: x[i], Y: y[i]}
	}
	return out
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func failed(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}
