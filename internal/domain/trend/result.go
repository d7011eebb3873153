package trend

import "fmt"

// Status tags the outcome of a prediction.
type Status string

// Prediction outcomes.
const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
	StatusError            Status = "error"
)

// Messages reported for non-ok outcomes.
const (
	MessageInsufficientData = "Insufficient data for analysis."
)

// Point is an (x, y) pair of a chart series.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Summary holds the headline numbers of a fitted trend.
type Summary struct {
	Type           PredictionType `json:"type"`
	Unit           string         `json:"unit"`
	TargetYear     int            `json:"target_year"`
	Forecast       float64        `json:"forecast"`
	ReferenceYear  int            `json:"reference_year"`
	ReferenceValue float64        `json:"reference_value"`
	R2             float64        `json:"r2"`
	RMSE           float64        `json:"rmse"`
	Intercept      float64        `json:"intercept"`
	Slope          float64        `json:"slope"`
	TrainSize      int            `json:"train_size"`
	TestSize       int            `json:"test_size"`
	// Optimistic is set when the model was evaluated on its own training data.
	Optimistic bool `json:"optimistic"`
}

// Lines renders the summary as display text.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Prediction %d: %.1f %s", s.TargetYear, s.Forecast, s.Unit),
		fmt.Sprintf("Last edition (%d): %.1f %s", s.ReferenceYear, s.ReferenceValue, s.Unit),
		fmt.Sprintf("R² = %.2f, RMSE = %.2f %s", s.R2, s.RMSE, s.Unit),
	}
	if s.Optimistic {
		lines = append(lines, "Evaluated on training data (too few editions to hold out a test set).")
	}
	return lines
}

// PredictionSeries is the data behind the trend chart.
type PredictionSeries struct {
	Title     string  `json:"title"`
	YLabel    string  `json:"y_label"`
	History   []Point `json:"history"`
	Line      []Point `json:"line"`
	Forecast  Point   `json:"forecast"`
	Reference Point   `json:"reference"`
}

// PerformanceSeries plots predicted against actual values.
type PerformanceSeries struct {
	Test     []Point  `json:"test"`
	Train    []Point  `json:"train"`
	Diagonal [2]Point `json:"diagonal"`
}

// Result is the outcome of one prediction. Prediction and Performance are nil
// unless Status is StatusOK.
type Result struct {
	Status      Status             `json:"status"`
	Message     string             `json:"message,omitempty"`
	Summary     *Summary           `json:"summary,omitempty"`
	Prediction  *PredictionSeries  `json:"prediction"`
	Performance *PerformanceSeries `json:"performance"`
}

// OK reports whether the prediction succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }
