package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitSVRLinearRecoversSlope(t *testing.T) {
	x := []float64{-2, -1, 0, 1, 2}
	y := []float64{-3, -1, 1, 3, 5}

	m, err := FitSVR(x, y, SVRParams{Kernel: KernelLinear, C: 100, Epsilon: 0.1})
	require.NoError(t, err)
	assert.True(t, m.Converged())

	for i := range x {
		assert.InDelta(t, y[i], m.Predict(x[i]), 0.2, "x=%v", x[i])
	}
	assert.InDelta(t, 21, m.Predict(10), 1.0)
}

func TestFitSVRSingleRowReturnsTarget(t *testing.T) {
	for _, k := range []Kernel{KernelLinear, KernelPolynomial, KernelRBF} {
		m, err := FitSVR([]float64{0}, []float64{7}, SVRParams{Kernel: k, C: 100, Epsilon: 0.1, Gamma: 1, Degree: 2})
		require.NoError(t, err, k.String())
		assert.InDelta(t, 7, m.Predict(0), 1e-9, k.String())
		assert.InDelta(t, 7, m.Predict(50), 1e-9, k.String())
		assert.Equal(t, 0, m.SupportVectors())
	}
}

func TestFitSVRConstantTarget(t *testing.T) {
	x := []float64{-1.5, -0.5, 0.5, 1.5}
	y := []float64{5, 5, 5, 5}

	m, err := FitSVR(x, y, SVRParams{Kernel: KernelRBF, C: 100, Epsilon: 0.1, Gamma: 1})
	require.NoError(t, err)
	for _, v := range []float64{-3, 0, 3, 100} {
		assert.InDelta(t, 5, m.Predict(v), 1e-9)
	}
}

func TestFitSVRRejectsBadInput(t *testing.T) {
	_, err := FitSVR(nil, nil, SVRParams{Kernel: KernelLinear, C: 1})
	require.Error(t, err)

	_, err = FitSVR([]float64{1, 2}, []float64{1}, SVRParams{Kernel: KernelLinear, C: 1})
	require.Error(t, err)

	_, err = FitSVR([]float64{1}, []float64{1}, SVRParams{Kernel: KernelLinear, C: 0})
	require.Error(t, err)

	_, err = FitSVR([]float64{1, 2}, []float64{1, math.NaN()}, SVRParams{Kernel: KernelLinear, C: 1})
	require.Error(t, err)
}

func TestStandardScaler(t *testing.T) {
	s := NewStandardScaler()
	out := s.FitTransform([]float64{1, 2, 3})
	assert.InDelta(t, 2, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), s.Scale, 1e-12)
	assert.InDelta(t, 0, out[1], 1e-12)
	assert.InDelta(t, -out[0], out[2], 1e-12)

	single := NewStandardScaler()
	single.Fit([]float64{5})
	assert.Equal(t, 1.0, single.Scale)
	assert.Equal(t, 0.0, single.TransformOne(5))
	assert.Equal(t, 3.0, single.TransformOne(8))
}
