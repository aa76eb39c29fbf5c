package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryOrder(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"rbf", "linear", "poly"}, r.Names())

	poly, ok := r.Lookup("poly")
	require.True(t, ok)
	assert.Equal(t, KernelPolynomial, poly.Kernel)
	assert.Equal(t, 2, poly.Degree)
	assert.Equal(t, "scale", poly.Hyperparameters()["gamma"])
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name  string
		specs []ModelSpec
	}{
		{"empty", nil},
		{"duplicate", []ModelSpec{LinearSpec("a", 1, 0.1), LinearSpec("a", 1, 0.1)}},
		{"blank name", []ModelSpec{LinearSpec(" ", 1, 0.1)}},
		{"zero C", []ModelSpec{LinearSpec("a", 0, 0.1)}},
		{"negative epsilon", []ModelSpec{LinearSpec("a", 1, -1)}},
		{"poly degree", []ModelSpec{PolySpec("p", 1, 0.1, 0, GammaScale(), 0)}},
		{"rbf gamma", []ModelSpec{RBFSpec("r", 1, 0.1, GammaValue(0))}},
		{"unknown kernel", []ModelSpec{{Name: "x", Kernel: Kernel(42), C: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.specs...)
			assert.Error(t, err)
		})
	}
}

func TestParseKernel(t *testing.T) {
	k, err := ParseKernel("RBF")
	require.NoError(t, err)
	assert.Equal(t, KernelRBF, k)

	k, err = ParseKernel("polynomial")
	require.NoError(t, err)
	assert.Equal(t, KernelPolynomial, k)

	_, err = ParseKernel("sigmoid")
	assert.Error(t, err)
}

func TestParseGamma(t *testing.T) {
	g, err := ParseGamma("")
	require.NoError(t, err)
	assert.True(t, g.Scale)

	g, err = ParseGamma("0.5")
	require.NoError(t, err)
	assert.Equal(t, GammaValue(0.5), g)

	_, err = ParseGamma("-1")
	assert.Error(t, err)
	_, err = ParseGamma("auto")
	assert.Error(t, err)
}
