package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeries reports malformed or missing input data.
	ErrInvalidSeries = errors.New("invalid series")
	// ErrModelFit is the sentinel every ModelFitError matches with errors.Is.
	ErrModelFit = errors.New("model fit failed")
	// ErrPrediction reports inference attempted without usable fitted models.
	ErrPrediction = errors.New("prediction failed")
)

// ModelFitError names the estimator that failed to fit.
type ModelFitError struct {
	Model string
	Err   error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("fit model %q: %v", e.Model, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ModelFitError) Unwrap() []error {
	return []error{ErrModelFit, e.Err}
}

// InvalidSeriesf wraps ErrInvalidSeries with a formatted reason.
func InvalidSeriesf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidSeries, fmt.Sprintf(format, a...))
}

// Predictionf wraps ErrPrediction with a formatted reason.
func Predictionf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPrediction, fmt.Sprintf(format, a...))
}
