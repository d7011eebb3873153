package repository

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrReadSource    = errors.New("failed to read source")
	ErrUnknownSource = errors.New("unknown dataset source")
)
