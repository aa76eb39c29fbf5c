package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPricePrediction/internal/domain/models"
	"StockPricePrediction/internal/services/regression"
)

func series(values ...float64) models.Series {
	s := models.Series{Symbol: "TEST"}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		s.Observations = append(s.Observations, models.Observation{
			Index: i + 1,
			Date:  day.AddDate(0, 0, i),
			Value: v,
		})
	}
	return s
}

type memSource struct {
	s   models.Series
	err error
}

func (m memSource) Load(context.Context, string) (models.Series, error) { return m.s, m.err }

type memSink struct {
	mu      sync.Mutex
	written []models.PredictionResult
	err     error
}

func (m *memSink) Write(_ context.Context, r models.PredictionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, r)
	return nil
}

func (m *memSink) Close() error { return nil }

type recordingRenderer struct {
	calls []string
	names []string
}

func (r *recordingRenderer) Render(_ context.Context, _ models.Series, set *models.FittedModelSet, path string) error {
	r.calls = append(r.calls, path)
	r.names = set.Names()
	return nil
}

func TestTrainFitsEveryModelInOrder(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		tr := NewTrainer(regression.DefaultRegistry(), nil, parallel)
		set, err := tr.Train(context.Background(), series(1, 2, 3, 4, 5))
		require.NoError(t, err)
		assert.Equal(t, []string{"rbf", "linear", "poly"}, set.Names(), "parallel=%v", parallel)
		assert.Equal(t, 3, set.Len())
	}
}

func TestTrainEmptySeries(t *testing.T) {
	tr := NewTrainer(regression.DefaultRegistry(), nil, false)
	_, err := tr.Train(context.Background(), models.Series{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidSeries))
}

func TestTrainNamesFailingModel(t *testing.T) {
	cause := errors.New("singular")
	for _, parallel := range []bool{false, true} {
		tr := NewTrainer(regression.DefaultRegistry(), nil, parallel)
		tr.fit = func(spec regression.ModelSpec, x, y []float64) (*regression.Pipeline, error) {
			if spec.Name == "linear" {
				return nil, cause
			}
			return regression.Fit(spec, x, y)
		}

		set, err := tr.Train(context.Background(), series(1, 2, 3))
		require.Error(t, err)
		assert.Nil(t, set)

		var fitErr *models.ModelFitError
		require.True(t, errors.As(err, &fitErr))
		assert.Equal(t, "linear", fitErr.Model)
		assert.True(t, errors.Is(err, models.ErrModelFit))
		assert.True(t, errors.Is(err, cause))
	}
}

func TestTrainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewTrainer(regression.DefaultRegistry(), nil, false)
	_, err := tr.Train(ctx, series(1, 2, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictOneValuePerModel(t *testing.T) {
	tr := NewTrainer(regression.DefaultRegistry(), nil, false)
	set, err := tr.Train(context.Background(), series(10, 11, 12, 13, 14))
	require.NoError(t, err)

	res, err := NewPredictor(nil).Predict(context.Background(), set, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, res.TargetIndex)
	require.Len(t, res.Estimates, 3)
	for _, name := range set.Names() {
		v, ok := res.Value(name)
		require.True(t, ok, name)
		m, _ := set.Get(name)
		assert.Equal(t, m.Predict(6), v, name)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
	}
}

func TestPredictRejectsEmptySetAndBadTarget(t *testing.T) {
	p := NewPredictor(nil)

	_, err := p.Predict(context.Background(), nil, 1)
	assert.ErrorIs(t, err, models.ErrPrediction)

	_, err = p.Predict(context.Background(), models.NewFittedModelSet([]string{"rbf"}), 1)
	assert.ErrorIs(t, err, models.ErrPrediction)

	set, err := NewTrainer(regression.DefaultRegistry(), nil, false).Train(context.Background(), series(1, 2))
	require.NoError(t, err)
	_, err = p.Predict(context.Background(), set, 0)
	assert.ErrorIs(t, err, models.ErrPrediction)
}

func TestRunEndToEnd(t *testing.T) {
	sink := &memSink{}
	r := &recordingRenderer{}
	uc := NewForecastUseCase(
		memSource{s: series(1, 2, 3, 4, 5)},
		NewTrainer(regression.DefaultRegistry(), nil, false),
		NewPredictor(nil),
		r, sink, nil,
	)

	res, err := uc.Run(context.Background(), RunOptions{PlotPath: "out.png"})
	require.NoError(t, err)

	assert.Equal(t, 6, res.TargetIndex)
	assert.Equal(t, "TEST", res.Symbol)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), res.LastDate)

	m := res.AsMap()
	assert.Len(t, m, 3)
	for _, k := range []string{"rbf", "linear", "poly"} {
		v, ok := m[k]
		require.True(t, ok, k)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), k)
	}

	assert.Equal(t, []string{"out.png"}, r.calls)
	assert.Equal(t, []string{"rbf", "linear", "poly"}, r.names)
	require.Len(t, sink.written, 1)
	assert.Equal(t, res, sink.written[0])
}

func TestRunIsDeterministic(t *testing.T) {
	newUC := func() *ForecastUseCase {
		return NewForecastUseCase(
			memSource{s: series(3, 1, 4, 1, 5, 9, 2, 6)},
			NewTrainer(regression.DefaultRegistry(), nil, false),
			NewPredictor(nil), nil, nil, nil,
		)
	}
	a, err := newUC().Run(context.Background(), RunOptions{Day: 12})
	require.NoError(t, err)
	b, err := newUC().Run(context.Background(), RunOptions{Day: 12})
	require.NoError(t, err)
	assert.Equal(t, a.AsMap(), b.AsMap())
}

func TestRunExplicitDay(t *testing.T) {
	uc := NewForecastUseCase(
		memSource{s: series(1, 2, 3)},
		NewTrainer(regression.DefaultRegistry(), nil, false),
		NewPredictor(nil), nil, nil, nil,
	)
	res, err := uc.Forecast(context.Background(), "", 365)
	require.NoError(t, err)
	assert.Equal(t, 365, res.TargetIndex)
}

func TestRunPropagatesStageErrors(t *testing.T) {
	trainer := NewTrainer(regression.DefaultRegistry(), nil, false)

	uc := NewForecastUseCase(memSource{err: models.InvalidSeriesf("missing column Close")}, trainer, NewPredictor(nil), nil, nil, nil)
	_, err := uc.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, models.ErrInvalidSeries)

	uc = NewForecastUseCase(memSource{s: models.Series{}}, trainer, NewPredictor(nil), nil, nil, nil)
	_, err = uc.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, models.ErrInvalidSeries)

	sinkErr := errors.New("disk full")
	uc = NewForecastUseCase(memSource{s: series(1, 2, 3)}, trainer, NewPredictor(nil), nil, &memSink{err: sinkErr}, nil)
	_, err = uc.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, sinkErr)
}

func TestResolveTargetDay(t *testing.T) {
	s := series(1, 2, 3)
	assert.Equal(t, 4, ResolveTargetDay(s, 0))
	assert.Equal(t, 4, ResolveTargetDay(s, -2))
	assert.Equal(t, 10, ResolveTargetDay(s, 10))
}
