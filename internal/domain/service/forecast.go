package service

import (
	"context"

	"StockPricePrediction/internal/domain/models"
)

// Renderer draws observed data and fitted curves to an image file.
type Renderer interface {
	Render(ctx context.Context, s models.Series, set *models.FittedModelSet, path string) error
}

// Forecaster runs the full load, train and predict flow for a symbol.
// day <= 0 selects the day after the last observation.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, day int) (models.PredictionResult, error)
}
