package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "csv", c.Source.Type)
	assert.Equal(t, "Date", c.Source.CSV.DateColumn)
	assert.Equal(t, "Close", c.Source.CSV.ValueColumn)
	assert.Equal(t, "svr_models.png", c.Output.PlotPath)
	assert.Equal(t, "predictions.json", c.Output.ReportPath)
	assert.Equal(t, 150, c.Output.PlotDPI)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, 10*time.Second, c.Kafka.Producer.WriteTimeout)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Empty(t, c.Models)
	assert.False(t, c.Training.Parallel)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParseOverlaysDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: production
log:
  level: debug
training:
  parallel: true
models:
  - name: rbf
    kernel: rbf
    c: 50
    epsilon: 0.2
    gamma: "0.5"
  - name: cubic
    kernel: poly
    c: 10
    degree: 3
`))
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.True(t, c.Training.Parallel)
	require.Len(t, c.Models, 2)
	assert.Equal(t, 3, c.Models[1].Degree)
	assert.Equal(t, "Close", c.Source.CSV.ValueColumn)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown kernel":    "models: [{name: a, kernel: sigmoid, c: 1}]",
		"non-positive C":    "models: [{name: a, kernel: rbf, c: 0}]",
		"duplicate model":   "models: [{name: a, kernel: rbf, c: 1}, {name: a, kernel: linear, c: 1}]",
		"bad source":        "source: {type: parquet}",
		"bad sink":          "sink: {publish: [s3]}",
		"kafka w/o brokers": "sink: {publish: [kafka]}",
		"bad log level":     "log: {level: loud}",
		"malformed":         "models: [",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"STOCK_CSV":     "/data/aapl.csv",
		"SOURCE":        "clickhouse",
		"SINK":          "kafka, clickhouse",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"KAFKA_TOPIC":   "preds",
		"LOG_LEVEL":     "WARN",
	}
	c := Default()
	c.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "/data/aapl.csv", c.Source.CSV.Path)
	assert.Equal(t, "clickhouse", c.Source.Type)
	assert.Equal(t, []string{"kafka", "clickhouse"}, c.Sink.Publish)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "preds", c.Kafka.Topic)
	assert.Equal(t, "warn", c.Log.Level)
	assert.True(t, c.Publishes("kafka"))
	require.NoError(t, c.Validate())
}

func TestLoadWithEnvFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: staging\n"), 0o644))
	t.Setenv("STOCK_CSV", "prices.csv")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, "prices.csv", c.Source.CSV.Path)

	_, err = LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
