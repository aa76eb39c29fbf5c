package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockPricePrediction/internal/domain/models"
	applogger "StockPricePrediction/pkg/logger"
	"StockPricePrediction/pkg/util"
)

// CSVColumns names the header columns read from a price file.
type CSVColumns struct {
	Date  string
	Value string
}

// DefaultCSVColumns matches the usual OHLC export layout.
func DefaultCSVColumns() CSVColumns { return CSVColumns{Date: "Date", Value: "Close"} }

// CSVSeriesSource reads a price series from CSV files. Load with an empty
// symbol reads path; a non-empty symbol reads <dir>/<symbol>.csv.
type CSVSeriesSource struct {
	path string
	dir  string
	cols CSVColumns
	l    *applogger.Logger
}

func NewCSVSeriesSource(path, dir string, cols CSVColumns) *CSVSeriesSource {
	if cols.Value == "" {
		cols.Value = DefaultCSVColumns().Value
	}
	return &CSVSeriesSource{path: path, dir: dir, cols: cols, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CSVSeriesSource) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CSVSeriesSource) Load(ctx context.Context, symbol string) (models.Series, error) {
	if err := ctx.Err(); err != nil {
		return models.Series{}, err
	}
	path, err := s.resolve(symbol)
	if err != nil {
		return models.Series{}, err
	}

	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return models.Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	series, err := ReadCSVSeries(bufio.NewReader(f), s.cols)
	if err != nil {
		s.l.Error("csv load error", applogger.String("path", path), applogger.Error(err))
		return models.Series{}, fmt.Errorf("%s: %w", path, err)
	}
	series.Symbol = symbol
	if series.Symbol == "" {
		series.Symbol = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s.l.Debug("csv load ok",
		applogger.String("path", path),
		applogger.Int("rows", series.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return series, nil
}

func (s *CSVSeriesSource) resolve(symbol string) (string, error) {
	if symbol == "" {
		if s.path == "" {
			return "", errors.New("csv source: no input file configured")
		}
		return s.path, nil
	}
	if s.dir == "" {
		if s.path == "" {
			return "", fmt.Errorf("csv source: no data directory for symbol %q", symbol)
		}
		return s.path, nil
	}
	if strings.ContainsAny(symbol, `/\`) || strings.Contains(symbol, "..") {
		return "", models.InvalidSeriesf("bad symbol %q", symbol)
	}
	return filepath.Join(s.dir, symbol+".csv"), nil
}

// ReadCSVSeries parses a headed CSV into a series sorted by date with indices
// 1..n. The value column is required. Without a date column rows keep file order.
func ReadCSVSeries(r io.Reader, cols CSVColumns) (models.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return models.Series{}, models.InvalidSeriesf("empty file")
	}
	if err != nil {
		return models.Series{}, fmt.Errorf("read header: %w", err)
	}
	valueCol, dateCol := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case cols.Value:
			valueCol = i
		case cols.Date:
			dateCol = i
		}
	}
	if valueCol < 0 {
		return models.Series{}, models.InvalidSeriesf("missing %q column", cols.Value)
	}

	var obs []models.Observation
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Series{}, models.InvalidSeriesf("line %d: %v", line, err)
		}
		if valueCol >= len(rec) {
			return models.Series{}, models.InvalidSeriesf("line %d: missing %q value", line, cols.Value)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[valueCol]), 64)
		if err != nil {
			return models.Series{}, models.InvalidSeriesf("line %d: bad %q value %q", line, cols.Value, rec[valueCol])
		}
		o := models.Observation{Value: v}
		if dateCol >= 0 && dateCol < len(rec) {
			d, ok := util.ParseTime(rec[dateCol])
			if !ok {
				return models.Series{}, models.InvalidSeriesf("line %d: bad %q value %q", line, cols.Date, rec[dateCol])
			}
			o.Date = d
		}
		obs = append(obs, o)
	}
	if len(obs) == 0 {
		return models.Series{}, models.InvalidSeriesf("no rows")
	}

	if dateCol >= 0 {
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	}
	for i := range obs {
		obs[i].Index = i + 1
	}
	return models.Series{Observations: obs}, nil
}
