package features

import (
	"math"

	"StockPricePrediction/internal/domain/models"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// Summary describes the observed series alongside the fitted models.
type Summary struct {
	Rows       int
	First      float64
	Last       float64
	Min        float64
	Max        float64
	Volatility float64 // annualized realized volatility of daily log returns
}

// Summarize computes descriptive statistics for a series.
func Summarize(s models.Series) Summary {
	vals := s.Values()
	if len(vals) == 0 {
		return Summary{}
	}
	out := Summary{Rows: len(vals), First: vals[0], Last: vals[len(vals)-1], Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		out.Min = math.Min(out.Min, v)
		out.Max = math.Max(out.Max, v)
	}
	rets := LogReturns(vals)
	out.Volatility = RealizedVolatility(rets, len(rets), TradingDaysPerYear)
	return out
}

// LogReturns computes r_t = ln(v_t / v_{t-1}). Non-positive prices yield 0.
// It returns nil for fewer than two values.
func LogReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility is the annualized sample deviation of the last window
// returns, or 0 when the window cannot be filled.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum, sum2 := 0.0, 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}
