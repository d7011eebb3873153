package trend

import "errors"

var (
	// ErrUnknownPredictionType is returned when a prediction type token is not recognised.
	ErrUnknownPredictionType = errors.New("unknown prediction type")
	// ErrNonFiniteFit is returned when the fitted model or its forecast is not finite.
	ErrNonFiniteFit = errors.New("regression produced non-finite values")
)
