package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"StockPricePrediction/internal/domain/models"
	pkgch "StockPricePrediction/pkg/clickhouse"
	applogger "StockPricePrediction/pkg/logger"
)

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type queryFunc func(ctx context.Context, query string, args ...any) (rowScanner, error)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CHSeriesConfig names the table and columns holding daily prices.
type CHSeriesConfig struct {
	Table        string
	DateColumn   string
	ValueColumn  string
	SymbolColumn string
	// Limit keeps only the latest N rows; 0 reads the whole history.
	Limit int
}

// CHSeriesSource loads price series from ClickHouse.
type CHSeriesSource struct {
	query queryFunc
	cfg   CHSeriesConfig
	l     *applogger.Logger
}

func NewCHSeriesSource(ch *pkgch.Client, cfg CHSeriesConfig) (*CHSeriesSource, error) {
	db := ch.DB()
	return newCHSeriesSource(func(ctx context.Context, q string, args ...any) (rowScanner, error) {
		return db.QueryContext(ctx, q, args...)
	}, cfg)
}

func newCHSeriesSource(q queryFunc, cfg CHSeriesConfig) (*CHSeriesSource, error) {
	for _, id := range []string{cfg.Table, cfg.DateColumn, cfg.ValueColumn, cfg.SymbolColumn} {
		if !identRe.MatchString(id) {
			return nil, fmt.Errorf("clickhouse source: invalid identifier %q", id)
		}
	}
	if cfg.Limit < 0 {
		return nil, fmt.Errorf("clickhouse source: limit must be >= 0, got %d", cfg.Limit)
	}
	return &CHSeriesSource{query: q, cfg: cfg, l: applogger.Nop()}, nil
}

// SetLogger injects a structured logger.
func (s *CHSeriesSource) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHSeriesSource) Load(ctx context.Context, symbol string) (models.Series, error) {
	if symbol == "" {
		return models.Series{}, models.InvalidSeriesf("clickhouse source requires a symbol")
	}
	start := time.Now()
	q, args := s.buildQuery(symbol)
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse load_series query error",
			applogger.String("table", s.cfg.Table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return models.Series{}, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	obs := make([]models.Observation, 0, 256)
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			s.l.Error("clickhouse load_series scan error",
				applogger.String("table", s.cfg.Table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			return models.Series{}, fmt.Errorf("scan observation: %w", err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return models.Series{}, fmt.Errorf("rows: %w", err)
	}
	if len(obs) == 0 {
		return models.Series{}, models.InvalidSeriesf("no rows for symbol %q", symbol)
	}

	if s.cfg.Limit > 0 {
		// reverse to ASC
		for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
			obs[i], obs[j] = obs[j], obs[i]
		}
	}
	for i := range obs {
		obs[i].Index = i + 1
	}
	s.l.Info("clickhouse load_series ok",
		applogger.String("table", s.cfg.Table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(obs)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return models.Series{Symbol: symbol, Observations: obs}, nil
}

func (s *CHSeriesSource) buildQuery(symbol string) (string, []any) {
	c := s.cfg
	if c.Limit > 0 {
		return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ? ORDER BY %s DESC LIMIT ?",
			c.DateColumn, c.ValueColumn, c.Table, c.SymbolColumn, c.DateColumn), []any{symbol, c.Limit}
	}
	return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ? ORDER BY %s ASC",
		c.DateColumn, c.ValueColumn, c.Table, c.SymbolColumn, c.DateColumn), []any{symbol}
}
