package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPricePrediction/internal/domain/models"
	"StockPricePrediction/internal/service/cache"
	"StockPricePrediction/internal/service/ratelimit"
)

type stubForecaster struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubForecaster) Forecast(_ context.Context, symbol string, day int) (models.PredictionResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return models.PredictionResult{}, s.err
	}
	if day == 0 {
		day = 6
	}
	return models.PredictionResult{
		Symbol:      symbol,
		TargetIndex: day,
		LastDate:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Estimates: []models.Estimate{
			{Model: "rbf", Value: 5.9},
			{Model: "linear", Value: 6},
			{Model: "poly", Value: 6.1},
		},
	}, nil
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func serve(t *testing.T, h *ForecastEchoHandler, target string) (int, envelope) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e.Group("/api"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestForecastReturnsPredictions(t *testing.T) {
	h := NewForecastEchoHandler(nil, &stubForecaster{}, nil, 0, nil)

	code, env := serve(t, h, "/api/forecast?symbol=AAPL&day=30")
	require.Equal(t, http.StatusOK, code)

	var resp models.ForecastResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, 30, resp.PredictDay)
	assert.Equal(t, "2024-01-05", resp.LastDate)
	assert.Equal(t, []string{"rbf", "linear", "poly"}, resp.Models)
	assert.Equal(t, 6.0, resp.Predictions["linear"])
	assert.False(t, resp.Cached)
}

func TestForecastUsesCache(t *testing.T) {
	f := &stubForecaster{}
	h := NewForecastEchoHandler(nil, f, cache.NewTTLCache(), time.Minute, nil)

	serve(t, h, "/api/forecast?symbol=AAPL")
	_, env := serve(t, h, "/api/forecast?symbol=AAPL")

	var resp models.ForecastResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Cached)
	assert.Equal(t, 6, resp.PredictDay)
	assert.Equal(t, 1, f.calls)
}

func TestForecastValidatesQuery(t *testing.T) {
	h := NewForecastEchoHandler(nil, &stubForecaster{}, nil, 0, nil)

	code, _ := serve(t, h, "/api/forecast?day=-1")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = serve(t, h, "/api/forecast?day=abc")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestForecastMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.InvalidSeriesf("missing column"), http.StatusBadRequest},
		{models.Predictionf("no fitted models"), http.StatusBadRequest},
		{fmt.Errorf("load series: %w", fs.ErrNotExist), http.StatusNotFound},
		{&models.ModelFitError{Model: "poly", Err: errors.New("diverged")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewForecastEchoHandler(nil, &stubForecaster{err: tc.err}, nil, 0, nil)
		code, env := serve(t, h, "/api/forecast?symbol=AAPL")
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, tc.code, env.Status, tc.err.Error())
	}
}

func TestForecastRateLimited(t *testing.T) {
	h := NewForecastEchoHandler(nil, &stubForecaster{}, nil, 0, ratelimit.New(1, 0.001))

	code, _ := serve(t, h, "/api/forecast?symbol=AAPL")
	assert.Equal(t, http.StatusOK, code)
	code, _ = serve(t, h, "/api/forecast?symbol=AAPL")
	assert.Equal(t, http.StatusTooManyRequests, code)
}
