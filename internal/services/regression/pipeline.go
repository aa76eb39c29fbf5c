package regression

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"StockPricePrediction/internal/domain/models"
)

// Pipeline is a fitted standard scaler followed by a fitted SVR. It is built
// only by Fit and never mutated afterwards.
type Pipeline struct {
	spec   ModelSpec
	scaler *StandardScaler
	svr    *SVR
	gamma  float64
}

// Fit builds a fresh scaler and estimator for spec and trains them on x, y.
// The returned pipeline owns its scaler; nothing is shared across calls.
func Fit(spec ModelSpec, x, y []float64) (*Pipeline, error) {
	if len(x) == 0 {
		return nil, errEmptyTrainingSet
	}
	scaler := NewStandardScaler()
	xs := scaler.FitTransform(x)

	gamma := spec.Gamma.resolve(xs)
	svr, err := FitSVR(xs, y, SVRParams{
		Kernel:  spec.Kernel,
		C:       spec.C,
		Epsilon: spec.Epsilon,
		Gamma:   gamma,
		Degree:  spec.Degree,
		Coef0:   spec.Coef0,
		Tol:     spec.Tol,
		MaxIter: spec.MaxIter,
	})
	if err != nil {
		return nil, fmt.Errorf("svr: %w", err)
	}
	return &Pipeline{spec: spec, scaler: scaler, svr: svr, gamma: gamma}, nil
}

// Name returns the model name.
func (p *Pipeline) Name() string { return p.spec.Name }

// Kernel returns the kernel family name.
func (p *Pipeline) Kernel() string { return p.spec.Kernel.String() }

// Spec returns the configuration the pipeline was built from.
func (p *Pipeline) Spec() ModelSpec { return p.spec }

// Gamma returns the resolved kernel coefficient.
func (p *Pipeline) Gamma() float64 { return p.gamma }

// Estimator exposes the fitted SVR for diagnostics.
func (p *Pipeline) Estimator() *SVR { return p.svr }

// Predict scales index with the fitted scaler and evaluates the SVR.
func (p *Pipeline) Predict(index float64) float64 {
	return p.svr.Predict(p.scaler.TransformOne(index))
}

// PredictAll evaluates the pipeline at every index.
func (p *Pipeline) PredictAll(indices []float64) []float64 {
	out := make([]float64, len(indices))
	for i, v := range indices {
		out[i] = p.Predict(v)
	}
	return out
}

var _ models.FittedModel = (*Pipeline)(nil)

// resolve returns the fixed gamma, or 1/var(xs) for the scale heuristic
// (1.0 when the scaled feature has no variance).
func (g Gamma) resolve(xs []float64) float64 {
	if !g.Scale {
		return g.Value
	}
	_, v := stat.PopMeanVariance(xs, nil)
	if v == 0 {
		return 1
	}
	return 1 / v
}
