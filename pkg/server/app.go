package server

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"StockPricePrediction/internal/domain/models"
	"StockPricePrediction/internal/repository"
	"StockPricePrediction/internal/usecase"
	"StockPricePrediction/pkg/config"
	xhttp "StockPricePrediction/pkg/http"
	applogger "StockPricePrediction/pkg/logger"
)

// App encapsulates the application lifecycle for both the one-shot predict
// command and the HTTP server.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	forecast    *usecase.ForecastUseCase
	httpHandler xhttp.Handler
	registry    *prometheus.Registry
	checks      xhttp.HealthChecks
	closers     []io.Closer
}

// New creates a new App instance with all dependencies. closers are released
// by Close in order.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	forecast *usecase.ForecastUseCase,
	handler xhttp.Handler,
	registry *prometheus.Registry,
	checks xhttp.HealthChecks,
	closers ...io.Closer,
) *App {
	return &App{
		cfg:         cfg,
		l:           l,
		forecast:    forecast,
		httpHandler: handler,
		registry:    registry,
		checks:      checks,
		closers:     closers,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.l }

// Predict runs the forecast once and echoes the estimates to out.
func (a *App) Predict(ctx context.Context, symbol string, day int, out io.Writer) (models.PredictionResult, error) {
	res, err := a.forecast.Run(ctx, usecase.RunOptions{
		Symbol:   symbol,
		Day:      day,
		PlotPath: a.cfg.Output.PlotPath,
	})
	if err != nil {
		return models.PredictionResult{}, err
	}

	b, err := repository.MarshalEstimates(res)
	if err != nil {
		return models.PredictionResult{}, err
	}
	if a.cfg.Output.ReportPath != "" {
		fmt.Fprintf(out, "Predictions saved to %s\n", a.cfg.Output.ReportPath)
	}
	fmt.Fprintf(out, "%s\n", b)
	return res, nil
}

// Serve starts the HTTP API and blocks until ctx is done or the listener fails.
func (a *App) Serve(ctx context.Context) error {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetrics(metricsPath, a.registry))
	for name, probe := range a.checks {
		opts = append(opts, xhttp.WithHealthCheck(name, probe))
	}
	srv := xhttp.NewServer(a.httpHandler, a.l, opts...)

	errCh := srv.Start()
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	}

	if err := srv.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}
	return nil
}

// Close releases infrastructure clients.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	a.l.Info("shutdown complete")
	return first
}
