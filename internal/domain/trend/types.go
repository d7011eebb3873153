package trend

import (
	"fmt"
	"strings"

	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/dataset"
)

// PredictionType selects the series a trend is fitted on.
type PredictionType int

// Supported prediction types.
const (
	TotalAttendance PredictionType = iota + 1
	AverageAttendance
	Goals
)

// TypeConfig describes how a prediction type builds and scales its series.
type TypeConfig struct {
	Token  string
	Title  string
	Unit   string
	YLabel string
	// Scale divides raw values before fitting.
	Scale  float64
	series func(*dataset.Dataset) []Point
}

var typeConfigs = map[PredictionType]TypeConfig{
	TotalAttendance: {
		Token:  "total_attendance",
		Title:  "Total Attendance",
		Unit:   "millions",
		YLabel: "Millions",
		Scale:  1e6,
		series: editionSeries(func(e dataset.Edition) float64 { return e.Attendance }),
	},
	AverageAttendance: {
		Token:  "avg_attendance",
		Title:  "Average Attendance",
		Unit:   "thousands",
		YLabel: "Thousands",
		Scale:  1e3,
		series: matchAttendanceSeries,
	},
	Goals: {
		Token:  "goals",
		Title:  "Goals Scored",
		Unit:   "goals",
		YLabel: "Goals",
		Scale:  1,
		series: editionSeries(func(e dataset.Edition) float64 { return e.GoalsScored }),
	},
}

// Types lists the supported prediction types in display order.
func Types() []PredictionType {
	return []PredictionType{TotalAttendance, AverageAttendance, Goals}
}

// ParsePredictionType maps a token such as "goals" to its type.
func ParsePredictionType(token string) (PredictionType, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	for _, t := range Types() {
		if typeConfigs[t].Token == token {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPredictionType, token)
}

// Config returns the configuration row of t.
func (t PredictionType) Config() (TypeConfig, error) {
	cfg, ok := typeConfigs[t]
	if !ok {
		return TypeConfig{}, fmt.Errorf("%w: %d", ErrUnknownPredictionType, int(t))
	}
	return cfg, nil
}

// String returns the token of t.
func (t PredictionType) String() string {
	if cfg, ok := typeConfigs[t]; ok {
		return cfg.Token
	}
	return fmt.Sprintf("PredictionType(%d)", int(t))
}

// MarshalText encodes t as its token.
func (t PredictionType) MarshalText() ([]byte, error) {
	cfg, err := t.Config()
	if err != nil {
		return nil, err
	}
	return []byte(cfg.Token), nil
}

// UnmarshalText decodes a token.
func (t *PredictionType) UnmarshalText(b []byte) error {
	parsed, err := ParsePredictionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func editionSeries(value func(dataset.Edition) float64) func(*dataset.Dataset) []Point {
	return func(ds *dataset.Dataset) []Point {
		editions := ds.Editions()
		out := make([]Point, 0, len(editions))
		for _, e := range editions {
			out = append(out, Point{X: float64(e.Year), Y: value(e)})
		}
		return out
	}
}

func matchAttendanceSeries(ds *dataset.Dataset) []Point {
	means := aggregate.MeanAttendanceByYear(ds.Matches())
	out := make([]Point, 0, len(means))
	for _, m := range means {
		out = append(out, Point{X: float64(m.Year), Y: m.Value})
	}
	return out
}
