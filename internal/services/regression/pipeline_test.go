package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleX = []float64{1, 2, 3, 4, 5}
	sampleY = []float64{10, 12, 11, 13, 15}
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func TestFitDefaultRegistryFiniteEverywhere(t *testing.T) {
	for _, spec := range DefaultRegistry().Specs() {
		p, err := Fit(spec, sampleX, sampleY)
		require.NoError(t, err, spec.Name)
		assert.Equal(t, spec.Name, p.Name())
		if spec.Kernel != KernelLinear {
			assert.InDelta(t, 1.0, p.Gamma(), 1e-9, spec.Name)
		}

		for _, idx := range []float64{1, 5, 6, 365, 10_000} {
			v := p.Predict(idx)
			assert.True(t, finite(v), "%s at %v = %v", spec.Name, idx, v)
		}
	}
}

func TestFitIsDeterministic(t *testing.T) {
	for _, spec := range DefaultRegistry().Specs() {
		a, err := Fit(spec, sampleX, sampleY)
		require.NoError(t, err)
		b, err := Fit(spec, sampleX, sampleY)
		require.NoError(t, err)
		assert.Equal(t, a.Predict(6), b.Predict(6), spec.Name)
	}
}

func TestFitSingleRowHasNoNaN(t *testing.T) {
	for _, spec := range DefaultRegistry().Specs() {
		p, err := Fit(spec, []float64{1}, []float64{42})
		require.NoError(t, err, spec.Name)
		assert.InDelta(t, 42, p.Predict(1), 1e-9, spec.Name)
		assert.True(t, finite(p.Predict(2)), spec.Name)
	}
}

func TestFitLinearTracksTrend(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v + 2
	}
	p, err := Fit(LinearSpec("linear", 100, 0.1), x, y)
	require.NoError(t, err)

	q := Evaluate(p, x, y)
	assert.Less(t, q.RMSE, 0.2)
	assert.Greater(t, q.R2, 0.99)
	assert.InDelta(t, 29, p.Predict(9), 1.0)
}

func TestFitRejectsEmpty(t *testing.T) {
	_, err := Fit(DefaultRegistry().Specs()[0], nil, nil)
	require.Error(t, err)
}

func TestPipelinesDoNotShareScaler(t *testing.T) {
	spec := LinearSpec("linear", 100, 0.1)
	a, err := Fit(spec, []float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	b, err := Fit(spec, []float64{10, 20, 30}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.NotSame(t, a.scaler, b.scaler)
	assert.InDelta(t, 2, a.scaler.Mean, 1e-12)
	assert.InDelta(t, 20, b.scaler.Mean, 1e-12)
}
