package usecase

import (
	"context"
	"math"

	"StockPricePrediction/internal/domain/models"
	drepo "StockPricePrediction/internal/domain/repository"
	applogger "StockPricePrediction/pkg/logger"
	"StockPricePrediction/pkg/metrics"
)

// Predictor evaluates every fitted model at a target day index.
type Predictor struct {
	metrics drepo.Metrics
	l       *applogger.Logger
}

func NewPredictor(m drepo.Metrics) *Predictor {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Predictor{metrics: m, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (p *Predictor) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

// Predict returns one estimate per fitted model, in registry order. Targets
// beyond the observed range are extrapolated without clamping.
func (p *Predictor) Predict(ctx context.Context, set *models.FittedModelSet, targetIndex int) (models.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return models.PredictionResult{}, err
	}
	if set.Len() == 0 {
		p.metrics.RecordError("prediction")
		return models.PredictionResult{}, models.Predictionf("no fitted models")
	}
	if targetIndex < 1 {
		p.metrics.RecordError("prediction")
		return models.PredictionResult{}, models.Predictionf("target index must be >= 1, got %d", targetIndex)
	}

	res := models.PredictionResult{TargetIndex: targetIndex, Estimates: make([]models.Estimate, 0, set.Len())}
	for _, m := range set.Models() {
		v := m.Predict(float64(targetIndex))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			p.metrics.RecordError("prediction")
			return models.PredictionResult{}, models.Predictionf("model %q produced %v at index %d", m.Name(), v, targetIndex)
		}
		res.Estimates = append(res.Estimates, models.Estimate{Model: m.Name(), Value: v})
	}
	p.l.Debug("predict ok",
		applogger.Int("target_index", targetIndex),
		applogger.Int("models", len(res.Estimates)),
	)
	return res, nil
}
