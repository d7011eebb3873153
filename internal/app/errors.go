package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrYearOutOfRange    = errors.New("prediction year out of range")
	ErrInvalidPrediction = errors.New("invalid prediction request")
)
