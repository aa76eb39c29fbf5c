package models

import "time"

// Observation is one chronologically sorted row of the input series.
type Observation struct {
	Index int       // 1-based sequential day index
	Date  time.Time // zero when the source carries no date
	Value float64
}

// Series is an ordered price series. Indices are contiguous starting at 1.
type Series struct {
	Symbol       string
	Observations []Observation
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Observations) }

// LastIndex returns the last sequential index, or 0 for an empty series.
func (s Series) LastIndex() int {
	if len(s.Observations) == 0 {
		return 0
	}
	return s.Observations[len(s.Observations)-1].Index
}

// Last returns the most recent observation.
func (s Series) Last() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Indices returns the day indices as float64, in series order.
func (s Series) Indices() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = float64(o.Index)
	}
	return out
}

// Values returns the observed values, in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Value
	}
	return out
}
