package regression

import "math"

// FitQuality summarizes in-sample error of a fitted pipeline.
type FitQuality struct {
	RMSE float64
	MAE  float64
	R2   float64
}

// Evaluate scores p against the observed targets at indices.
func Evaluate(p *Pipeline, indices, y []float64) FitQuality {
	pred := p.PredictAll(indices)
	return FitQuality{RMSE: RMSE(y, pred), MAE: MAE(y, pred), R2: R2(y, pred)}
}

func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue))
}

// R2 is the coefficient of determination; 0 when the targets are constant.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	ssTot, ssRes := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
