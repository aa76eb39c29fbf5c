package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPricePrediction/internal/domain/models"
)

func TestReadCSVSeriesSortsAndIndexes(t *testing.T) {
	in := "Date,Open,Close\n2024-01-03,1,103\n2024-01-01,1,101\n2024-01-02,1,102\n"
	s, err := ReadCSVSeries(strings.NewReader(in), DefaultCSVColumns())
	require.NoError(t, err)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1, 2, 3}, s.Indices())
	assert.Equal(t, []float64{101, 102, 103}, s.Values())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.Observations[0].Date)
}

func TestReadCSVSeriesWithoutDateKeepsOrder(t *testing.T) {
	s, err := ReadCSVSeries(strings.NewReader("Close\n3\n1\n2\n"), DefaultCSVColumns())
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, s.Values())
	assert.Equal(t, 3, s.LastIndex())
}

func TestReadCSVSeriesCustomColumns(t *testing.T) {
	in := "ts,adj_close\n2024-01-02,5\n2024-01-01,4\n"
	s, err := ReadCSVSeries(strings.NewReader(in), CSVColumns{Date: "ts", Value: "adj_close"})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, s.Values())
}

func TestReadCSVSeriesInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "Date,Open\n2024-01-01,1\n",
		"no rows":        "Date,Close\n",
		"bad value":      "Date,Close\n2024-01-01,abc\n",
		"blank value":    "Date,Close\n2024-01-01,\n",
		"bad date":       "Date,Close\nsoon,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSVSeries(strings.NewReader(in), DefaultCSVColumns())
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidSeries)
		})
	}
}

func TestCSVSeriesSourceLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AAPL.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Close\n2024-01-01,1\n2024-01-02,2\n"), 0o644))

	src := NewCSVSeriesSource(path, dir, DefaultCSVColumns())

	s, err := src.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s.Symbol)
	assert.Equal(t, 2, s.Len())

	s, err = src.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s.Symbol)

	_, err = src.Load(context.Background(), "MSFT")
	assert.Error(t, err)

	_, err = src.Load(context.Background(), "../AAPL")
	assert.ErrorIs(t, err, models.ErrInvalidSeries)
}

func TestCSVSeriesSourceMissingColumnIsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Open\n2024-01-01,1\n"), 0o644))

	_, err := NewCSVSeriesSource(path, "", DefaultCSVColumns()).Load(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrInvalidSeries)
}
