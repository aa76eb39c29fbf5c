package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stockpred"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fitDuration *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec
	prediction  *prometheus.GaugeVec
	seriesSize  *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fitDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_fit_duration_seconds",
				Help:      "Duration of a single model fit in seconds",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 60},
			},
			[]string{"model"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors encountered",
			},
			[]string{"type"},
		),
		prediction: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_prediction",
				Help:      "Last predicted price per symbol and model",
			},
			[]string{"symbol", "model"},
		),
		seriesSize: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "series_observations",
				Help:      "Number of observations in the last loaded series",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFit records how long a model took to fit.
func (r *Recorder) RecordFit(model string, seconds float64) {
	r.fitDuration.WithLabelValues(model).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPrediction records the last estimate of model for symbol.
func (r *Recorder) RecordPrediction(symbol, model string, value float64) {
	r.prediction.WithLabelValues(symbol, model).Set(value)
}

// RecordSeriesSize records the observation count of a loaded series.
func (r *Recorder) RecordSeriesSize(symbol string, n int) {
	r.seriesSize.WithLabelValues(symbol).Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordFit(string, float64)                {}
func (Nop) RecordError(string)                       {}
func (Nop) RecordPrediction(string, string, float64) {}
func (Nop) RecordSeriesSize(string, int)             {}
func (Nop) RecordLatency(string, float64)            {}
