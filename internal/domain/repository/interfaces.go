package repository

import (
	"context"

	"StockPricePrediction/internal/domain/models"
)

// SeriesSource loads a chronologically ordered, 1-based indexed price series.
// An empty symbol selects the source's default series.
type SeriesSource interface {
	Load(ctx context.Context, symbol string) (models.Series, error)
}

// ReportSink persists or publishes a prediction result.
type ReportSink interface {
	Write(ctx context.Context, r models.PredictionResult) error
	Close() error
}

type Metrics interface {
	RecordFit(model string, seconds float64)
	RecordError(kind string)
	RecordPrediction(symbol, model string, value float64)
	RecordSeriesSize(symbol string, n int)
	RecordLatency(op string, seconds float64)
}
