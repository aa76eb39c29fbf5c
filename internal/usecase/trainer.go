package usecase

import (
	"context"
	"sync"
	"time"

	"StockPricePrediction/internal/domain/models"
	drepo "StockPricePrediction/internal/domain/repository"
	"StockPricePrediction/internal/services/features"
	"StockPricePrediction/internal/services/regression"
	applogger "StockPricePrediction/pkg/logger"
	"StockPricePrediction/pkg/metrics"
)

type fitFunc func(spec regression.ModelSpec, x, y []float64) (*regression.Pipeline, error)

// Trainer fits every registered model against a series.
type Trainer struct {
	registry *regression.Registry
	metrics  drepo.Metrics
	parallel bool
	fit      fitFunc
	l        *applogger.Logger
}

// NewTrainer creates a Trainer over reg. A nil m disables metrics.
func NewTrainer(reg *regression.Registry, m drepo.Metrics, parallel bool) *Trainer {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Trainer{registry: reg, metrics: m, parallel: parallel, fit: regression.Fit, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (t *Trainer) SetLogger(l *applogger.Logger) {
	if l != nil {
		t.l = l
	}
}

// Registry returns the model registry the trainer fits.
func (t *Trainer) Registry() *regression.Registry { return t.registry }

// Train builds the design once and fits a fresh pipeline per spec. Any failed
// fit aborts the run with a *models.ModelFitError.
func (t *Trainer) Train(ctx context.Context, s models.Series) (*models.FittedModelSet, error) {
	design, err := features.Build(s)
	if err != nil {
		t.metrics.RecordError("invalid_series")
		return nil, err
	}
	x, y := design.Feature(), design.Y

	set := models.NewFittedModelSet(t.registry.Names())
	if t.parallel {
		err = t.trainParallel(ctx, set, x, y)
	} else {
		err = t.trainSequential(ctx, set, x, y)
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (t *Trainer) trainSequential(ctx context.Context, set *models.FittedModelSet, x, y []float64) error {
	for _, spec := range t.registry.Specs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := t.fitOne(spec, x, y)
		if err != nil {
			return err
		}
		set.Put(p)
	}
	return nil
}

func (t *Trainer) trainParallel(ctx context.Context, set *models.FittedModelSet, x, y []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	specs := t.registry.Specs()
	errs := make([]error, len(specs))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec regression.ModelSpec) {
			defer wg.Done()
			p, err := t.fitOne(spec, x, y)
			if err != nil {
				errs[i] = err
				return
			}
			mu.Lock()
			set.Put(p)
			mu.Unlock()
		}(i, spec)
	}
	wg.Wait()

	// report the first failure in registry order
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Trainer) fitOne(spec regression.ModelSpec, x, y []float64) (*regression.Pipeline, error) {
	start := time.Now()
	p, err := t.fit(spec, x, y)
	took := time.Since(start)
	if err != nil {
		t.metrics.RecordError("fit")
		t.l.Error("train model error",
			applogger.String("model", spec.Name),
			applogger.String("kernel", spec.Kernel.String()),
			applogger.Error(err),
		)
		return nil, &models.ModelFitError{Model: spec.Name, Err: err}
	}
	t.metrics.RecordFit(spec.Name, took.Seconds())

	q := regression.Evaluate(p, x, y)
	est := p.Estimator()
	t.l.Info("train model ok",
		applogger.String("model", spec.Name),
		applogger.String("kernel", spec.Kernel.String()),
		applogger.Int("rows", len(y)),
		applogger.Int("support_vectors", est.SupportVectors()),
		applogger.Int("iterations", est.Iterations()),
		applogger.Bool("converged", est.Converged()),
		applogger.Float("rmse", q.RMSE),
		applogger.Float("r2", q.R2),
		applogger.Duration("duration_ms", took),
	)
	return p, nil
}
