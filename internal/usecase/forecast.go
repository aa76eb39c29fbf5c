package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPricePrediction/internal/domain/models"
	drepo "StockPricePrediction/internal/domain/repository"
	domsvc "StockPricePrediction/internal/domain/service"
	"StockPricePrediction/internal/services/features"
	applogger "StockPricePrediction/pkg/logger"
	"StockPricePrediction/pkg/metrics"
)

// RunOptions controls one command-line forecast.
type RunOptions struct {
	Symbol string
	// Day is the target index; <= 0 selects the day after the last observation.
	Day      int
	PlotPath string // empty skips rendering
}

// ForecastUseCase drives load, train, render, predict and report.
type ForecastUseCase struct {
	source    drepo.SeriesSource
	trainer   *Trainer
	predictor *Predictor
	renderer  domsvc.Renderer
	sink      drepo.ReportSink
	metrics   drepo.Metrics
	l         *applogger.Logger
}

// NewForecastUseCase wires the flow. renderer and sink may be nil.
func NewForecastUseCase(
	source drepo.SeriesSource,
	trainer *Trainer,
	predictor *Predictor,
	renderer domsvc.Renderer,
	sink drepo.ReportSink,
	m drepo.Metrics,
) *ForecastUseCase {
	if m == nil {
		m = metrics.Nop{}
	}
	return &ForecastUseCase{
		source:    source,
		trainer:   trainer,
		predictor: predictor,
		renderer:  renderer,
		sink:      sink,
		metrics:   m,
		l:         applogger.Nop(),
	}
}

// SetLogger injects a structured logger into the use case and its workers.
func (u *ForecastUseCase) SetLogger(l *applogger.Logger) {
	if l == nil {
		return
	}
	u.l = l
	u.trainer.SetLogger(l)
	u.predictor.SetLogger(l)
}

// Run executes the full flow. Any stage failure aborts the run.
func (u *ForecastUseCase) Run(ctx context.Context, opts RunOptions) (models.PredictionResult, error) {
	start := time.Now()
	s, set, err := u.load(ctx, opts.Symbol)
	if err != nil {
		return models.PredictionResult{}, err
	}

	if opts.PlotPath != "" && u.renderer != nil {
		if err := u.renderer.Render(ctx, s, set, opts.PlotPath); err != nil {
			u.metrics.RecordError("render")
			return models.PredictionResult{}, fmt.Errorf("render plot: %w", err)
		}
		u.l.Info("plot saved", applogger.String("path", opts.PlotPath))
	}

	res, err := u.predict(ctx, s, set, opts.Day)
	if err != nil {
		return models.PredictionResult{}, err
	}

	if u.sink != nil {
		if err := u.sink.Write(ctx, res); err != nil {
			u.metrics.RecordError("report")
			return models.PredictionResult{}, fmt.Errorf("write report: %w", err)
		}
	}
	u.metrics.RecordLatency("run", time.Since(start).Seconds())
	return res, nil
}

// Forecast trains and predicts without rendering or reporting.
func (u *ForecastUseCase) Forecast(ctx context.Context, symbol string, day int) (models.PredictionResult, error) {
	start := time.Now()
	s, set, err := u.load(ctx, symbol)
	if err != nil {
		return models.PredictionResult{}, err
	}
	res, err := u.predict(ctx, s, set, day)
	if err != nil {
		return models.PredictionResult{}, err
	}
	u.metrics.RecordLatency("forecast", time.Since(start).Seconds())
	return res, nil
}

func (u *ForecastUseCase) load(ctx context.Context, symbol string) (models.Series, *models.FittedModelSet, error) {
	s, err := u.source.Load(ctx, symbol)
	if err != nil {
		u.metrics.RecordError("load")
		return models.Series{}, nil, fmt.Errorf("load series: %w", err)
	}
	u.metrics.RecordSeriesSize(s.Symbol, s.Len())
	sum := features.Summarize(s)
	u.l.Info("series loaded",
		applogger.String("symbol", s.Symbol),
		applogger.Int("rows", sum.Rows),
		applogger.Float("first", sum.First),
		applogger.Float("last", sum.Last),
		applogger.Float("min", sum.Min),
		applogger.Float("max", sum.Max),
		applogger.Float("volatility", sum.Volatility),
	)

	set, err := u.trainer.Train(ctx, s)
	if err != nil {
		return models.Series{}, nil, err
	}
	return s, set, nil
}

func (u *ForecastUseCase) predict(ctx context.Context, s models.Series, set *models.FittedModelSet, day int) (models.PredictionResult, error) {
	res, err := u.predictor.Predict(ctx, set, ResolveTargetDay(s, day))
	if err != nil {
		return models.PredictionResult{}, err
	}
	res.Symbol = s.Symbol
	if last, ok := s.Last(); ok {
		res.LastDate = last.Date
	}
	for _, e := range res.Estimates {
		u.metrics.RecordPrediction(s.Symbol, e.Model, e.Value)
	}
	return res, nil
}

// ResolveTargetDay returns day, or the index after the last observation when
// day is not positive.
func ResolveTargetDay(s models.Series, day int) int {
	if day > 0 {
		return day
	}
	return s.LastIndex() + 1
}

var _ domsvc.Forecaster = (*ForecastUseCase)(nil)
