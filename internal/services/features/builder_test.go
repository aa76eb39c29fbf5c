package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPricePrediction/internal/domain/models"
)

func series(values ...float64) models.Series {
	s := models.Series{Symbol: "TEST"}
	for i, v := range values {
		s.Observations = append(s.Observations, models.Observation{Index: i + 1, Value: v})
	}
	return s
}

func TestBuildAlignsRows(t *testing.T) {
	d, err := Build(series(10, 12, 11, 13, 15))
	require.NoError(t, err)

	r, c := d.X.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, d.Feature())
	assert.Equal(t, []float64{10, 12, 11, 13, 15}, d.Y)
	assert.Equal(t, 5, d.Rows())
}

func TestBuildRejectsInvalidSeries(t *testing.T) {
	gap := series(1, 2, 3)
	gap.Observations[2].Index = 4

	dup := series(1, 2)
	dup.Observations[1].Index = 1

	zeroBased := series(1)
	zeroBased.Observations[0].Index = 0

	tests := map[string]models.Series{
		"empty":      {},
		"gap":        gap,
		"duplicate":  dup,
		"zero based": zeroBased,
		"nan value":  series(1, math.NaN()),
		"inf value":  series(math.Inf(1)),
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Build(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidSeries))
		})
	}
}

func TestBuildSingleRow(t *testing.T) {
	d, err := Build(series(42))
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, d.Feature())
}
