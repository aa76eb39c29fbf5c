package features

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"StockPricePrediction/internal/domain/models"
)

// Design is the supervised view of a series: one feature column holding the
// sequential day index and the observed values as targets, row-aligned.
type Design struct {
	X *mat.Dense
	Y []float64
}

// Rows returns the number of samples.
func (d Design) Rows() int { return len(d.Y) }

// Feature returns the single feature column.
func (d Design) Feature() []float64 {
	return mat.Col(nil, 0, d.X)
}

// Build converts a series into a design matrix and target vector. The series
// must be non-empty, contiguous from index 1, and carry finite values.
func Build(s models.Series) (Design, error) {
	n := s.Len()
	if n == 0 {
		return Design{}, models.InvalidSeriesf("series is empty")
	}
	x := make([]float64, n)
	y := make([]float64, n)
	for i, o := range s.Observations {
		if o.Index != i+1 {
			return Design{}, models.InvalidSeriesf("row %d has index %d, want %d", i, o.Index, i+1)
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return Design{}, models.InvalidSeriesf("row %d has non-finite value", i)
		}
		x[i] = float64(o.Index)
		y[i] = o.Value
	}
	return Design{X: mat.NewDense(n, 1, x), Y: y}, nil
}
