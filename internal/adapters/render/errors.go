package render

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrMissingColumn = errors.New("chart column missing")
	ErrNoSeries      = errors.New("prediction has no chart series")
	ErrSave          = errors.New("failed to save chart")
)
