package regression

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes a single feature to zero mean and unit variance.
// A zero-variance column keeps scale 1 so transforms never divide by zero.
type StandardScaler struct {
	Mean  float64
	Scale float64
	fit   bool
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler { return &StandardScaler{Scale: 1} }

// Fit learns mean and population standard deviation of x.
func (s *StandardScaler) Fit(x []float64) {
	if len(x) == 0 {
		return
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	s.Mean = mean
	s.Scale = math.Sqrt(variance)
	if s.Scale == 0 || math.IsNaN(s.Scale) {
		s.Scale = 1
	}
	s.fit = true
}

// TransformOne scales a single value.
func (s *StandardScaler) TransformOne(v float64) float64 {
	if !s.fit {
		return v
	}
	return (v - s.Mean) / s.Scale
}

// Transform scales every value of x into a new slice.
func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = s.TransformOne(v)
	}
	return out
}

// FitTransform fits on x and returns the scaled copy.
func (s *StandardScaler) FitTransform(x []float64) []float64 {
	s.Fit(x)
	return s.Transform(x)
}
