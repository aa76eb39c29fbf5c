package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"StockPricePrediction/internal/domain/models"
	domrepo "StockPricePrediction/internal/domain/repository"
	pkgch "StockPricePrediction/pkg/clickhouse"
	applogger "StockPricePrediction/pkg/logger"
)

// MarshalReport encodes r as {"predict_day": N, "<model>": value, ...} with
// models in registry order.
func MarshalReport(r models.PredictionResult) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"predict_day":`)
	buf.WriteString(strconv.Itoa(r.TargetIndex))
	if err := writeEstimates(&buf, r.Estimates, true); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalEstimates encodes only the per-model values, in registry order.
func MarshalEstimates(r models.PredictionResult) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeEstimates(&buf, r.Estimates, false); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeEstimates(buf *bytes.Buffer, es []models.Estimate, leadingComma bool) error {
	for i, e := range es {
		k, err := json.Marshal(e.Model)
		if err != nil {
			return err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.Model, err)
		}
		if leadingComma || i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	return nil
}

// FileReportSink writes the report as indented JSON, replacing the file.
type FileReportSink struct {
	path string
	l    *applogger.Logger
}

func NewFileReportSink(path string) *FileReportSink {
	return &FileReportSink{path: path, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *FileReportSink) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *FileReportSink) Write(_ context.Context, r models.PredictionResult) error {
	compact, err := MarshalReport(r)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return fmt.Errorf("indent report: %w", err)
	}
	out.WriteByte('\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	s.l.Info("report saved", applogger.String("path", s.path))
	return nil
}

func (s *FileReportSink) Close() error { return nil }

// Publisher is the subset of the Kafka producer the report sink needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaReportSink publishes each report keyed by symbol.
type KafkaReportSink struct {
	producer Publisher
	topic    string
}

func NewKafkaReportSink(producer Publisher, topic string) *KafkaReportSink {
	return &KafkaReportSink{producer: producer, topic: topic}
}

func (s *KafkaReportSink) Write(ctx context.Context, r models.PredictionResult) error {
	b, err := MarshalReport(r)
	if err != nil {
		return err
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(r.Symbol), b); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

func (s *KafkaReportSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CHReportSink stores one row per estimate.
type CHReportSink struct {
	db    execer
	table string
	now   func() time.Time
}

// PredictionsSchema returns the DDL for the predictions table.
func PredictionsSchema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    created_at DateTime64(3),
    symbol LowCardinality(String),
    predict_day UInt32,
    last_date Date,
    model LowCardinality(String),
    value Float64
) ENGINE = MergeTree ORDER BY (symbol, created_at)`, table)}
}

// NewCHReportSink ensures the predictions table exists.
func NewCHReportSink(ctx context.Context, ch *pkgch.Client, table string) (*CHReportSink, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("clickhouse sink: invalid table %q", table)
	}
	if err := ch.InitSchema(ctx, PredictionsSchema(table)); err != nil {
		return nil, err
	}
	return &CHReportSink{db: ch.DB(), table: table, now: time.Now}, nil
}

func (s *CHReportSink) Write(ctx context.Context, r models.PredictionResult) error {
	if len(r.Estimates) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (created_at, symbol, predict_day, last_date, model, value) VALUES", s.table)
	args := make([]any, 0, len(r.Estimates)*6)
	for i, e := range r.Estimates {
		if i > 0 {
			q += ","
		}
		q += " (?, ?, ?, ?, ?, ?)"
		args = append(args, s.now(), r.Symbol, uint32(r.TargetIndex), r.LastDate, e.Model, e.Value)
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert predictions: %w", err)
	}
	return nil
}

// Close leaves the pool to its owner.
func (s *CHReportSink) Close() error { return nil }

// MultiSink writes to every sink in order and stops at the first failure.
type MultiSink []domrepo.ReportSink

func (m MultiSink) Write(ctx context.Context, r models.PredictionResult) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
