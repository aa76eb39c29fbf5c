package features

import (
	"math"
	"testing"
)

func TestLogReturns(t *testing.T) {
	got := LogReturns([]float64{100, 110, 0, 121})
	if len(got) != 3 {
		t.Fatalf("expected 3 returns, got %d", len(got))
	}
	if math.Abs(got[0]-math.Log(1.1)) > 1e-12 {
		t.Fatalf("unexpected first return %v", got[0])
	}
	if got[1] != 0 || got[2] != 0 {
		t.Fatalf("expected zero returns around non-positive price, got %v", got)
	}
	if LogReturns([]float64{1}) != nil {
		t.Fatalf("expected nil for a single value")
	}
}

func TestRealizedVolatilityShortWindow(t *testing.T) {
	if v := RealizedVolatility([]float64{0.1}, 5, TradingDaysPerYear); v != 0 {
		t.Fatalf("expected 0, got %v", v)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(series(10, 12, 11, 13, 15))
	if s.Rows != 5 || s.First != 10 || s.Last != 15 || s.Min != 10 || s.Max != 15 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Volatility <= 0 {
		t.Fatalf("expected positive volatility, got %v", s.Volatility)
	}
	if empty := Summarize(series()); empty.Rows != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}
}
