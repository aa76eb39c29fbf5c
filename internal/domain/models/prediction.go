package models

import "time"

// FittedModel is a trained preprocessing+estimator pipeline. It is read-only
// once produced.
type FittedModel interface {
	Name() string
	Kernel() string
	// Predict evaluates the model at a sequential day index.
	Predict(index float64) float64
}

// FittedModelSet holds fitted models keyed by name, in registry order.
type FittedModelSet struct {
	names  []string
	models map[string]FittedModel
}

// NewFittedModelSet returns an empty set ordered by names. Only models whose
// name is listed can be stored.
func NewFittedModelSet(names []string) *FittedModelSet {
	order := make([]string, len(names))
	copy(order, names)
	return &FittedModelSet{names: order, models: make(map[string]FittedModel, len(names))}
}

// Put stores m under its name. It reports false for names outside the order.
func (s *FittedModelSet) Put(m FittedModel) bool {
	for _, n := range s.names {
		if n == m.Name() {
			s.models[n] = m
			return true
		}
	}
	return false
}

// Get returns the model stored under name.
func (s *FittedModelSet) Get(name string) (FittedModel, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.models[name]
	return m, ok
}

// Len returns the number of stored models.
func (s *FittedModelSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.models)
}

// Names returns stored model names in registry order.
func (s *FittedModelSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.models))
	for _, n := range s.names {
		if _, ok := s.models[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Models returns stored models in registry order.
func (s *FittedModelSet) Models() []FittedModel {
	names := s.Names()
	out := make([]FittedModel, len(names))
	for i, n := range names {
		out[i] = s.models[n]
	}
	return out
}

// Estimate is one model's point prediction.
type Estimate struct {
	Model string
	Value float64
}

// PredictionResult carries one estimate per fitted model for a target index.
type PredictionResult struct {
	Symbol      string
	TargetIndex int
	LastDate    time.Time
	Estimates   []Estimate
}

// AsMap returns the estimates keyed by model name.
func (r PredictionResult) AsMap() map[string]float64 {
	out := make(map[string]float64, len(r.Estimates))
	for _, e := range r.Estimates {
		out[e.Model] = e.Value
	}
	return out
}

// Value returns the estimate for model.
func (r PredictionResult) Value(model string) (float64, bool) {
	for _, e := range r.Estimates {
		if e.Model == model {
			return e.Value, true
		}
	}
	return 0, false
}
