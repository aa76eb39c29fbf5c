package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"StockPricePrediction/internal/domain/repository"
	domsvc "StockPricePrediction/internal/domain/service"
	"StockPricePrediction/internal/handler/api"
	internalrepo "StockPricePrediction/internal/repository"
	"StockPricePrediction/internal/service/cache"
	"StockPricePrediction/internal/service/chart"
	"StockPricePrediction/internal/service/ratelimit"
	"StockPricePrediction/internal/services/regression"
	"StockPricePrediction/internal/usecase"
	pkgch "StockPricePrediction/pkg/clickhouse"
	"StockPricePrediction/pkg/config"
	xhttp "StockPricePrediction/pkg/http"
	pkgkafka "StockPricePrediction/pkg/kafka"
	applogger "StockPricePrediction/pkg/logger"
	"StockPricePrediction/pkg/metrics"
	"StockPricePrediction/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry shared by app and HTTP metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideClickHouseClient connects when the source or a sink needs ClickHouse;
// otherwise it returns a nil client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Source.Type != "clickhouse" && !cfg.Publishes("clickhouse") {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideKafkaProducer creates a producer when reports are published to Kafka.
// The report sink owns and closes it.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Publishes("kafka") {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHeader("environment", cfg.Environment),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideModelRegistry builds the model registry from config, or the default
// rbf/linear/poly set when none is configured.
func ProvideModelRegistry(cfg *config.Config) (*regression.Registry, error) {
	if len(cfg.Models) == 0 {
		return regression.DefaultRegistry(), nil
	}
	specs := make([]regression.ModelSpec, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		spec, err := ModelSpecFromConfig(m)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return regression.NewRegistry(specs...)
}

// ModelSpecFromConfig parses one configured model into a validated spec.
func ModelSpecFromConfig(m config.ModelConfig) (regression.ModelSpec, error) {
	k, err := regression.ParseKernel(m.Kernel)
	if err != nil {
		return regression.ModelSpec{}, fmt.Errorf("model %q: %w", m.Name, err)
	}
	g, err := regression.ParseGamma(m.Gamma)
	if err != nil {
		return regression.ModelSpec{}, fmt.Errorf("model %q: %w", m.Name, err)
	}
	spec := regression.ModelSpec{
		Name:    m.Name,
		Kernel:  k,
		C:       m.C,
		Epsilon: m.Epsilon,
		Gamma:   g,
		Degree:  m.Degree,
		Coef0:   m.Coef0,
		Tol:     m.Tol,
		MaxIter: m.MaxIter,
	}
	if k == regression.KernelPolynomial && spec.Degree == 0 {
		spec.Degree = 3
	}
	return spec, spec.Validate()
}

// ProvideSeriesSource selects the configured price source.
func ProvideSeriesSource(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.SeriesSource, error) {
	switch cfg.Source.Type {
	case "clickhouse":
		src, err := internalrepo.NewCHSeriesSource(ch, internalrepo.CHSeriesConfig{
			Table:        cfg.Source.ClickHouse.Table,
			DateColumn:   cfg.Source.ClickHouse.DateColumn,
			ValueColumn:  cfg.Source.ClickHouse.ValueColumn,
			SymbolColumn: cfg.Source.ClickHouse.SymbolColumn,
			Limit:        cfg.Source.ClickHouse.Limit,
		})
		if err != nil {
			return nil, err
		}
		src.SetLogger(l.Component("source"))
		return src, nil
	default:
		src := internalrepo.NewCSVSeriesSource(cfg.Source.CSV.Path, cfg.Source.CSV.Dir, internalrepo.CSVColumns{
			Date:  cfg.Source.CSV.DateColumn,
			Value: cfg.Source.CSV.ValueColumn,
		})
		src.SetLogger(l.Component("source"))
		return src, nil
	}
}

// ProvideReportSink fans reports out to the file and every configured publisher.
func ProvideReportSink(cfg *config.Config, producer *pkgkafka.Producer, ch *pkgch.Client, l *applogger.Logger) (repository.ReportSink, error) {
	var sinks internalrepo.MultiSink
	if cfg.Output.ReportPath != "" {
		fs := internalrepo.NewFileReportSink(cfg.Output.ReportPath)
		fs.SetLogger(l.Component("report"))
		sinks = append(sinks, fs)
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaReportSink(producer, cfg.Kafka.Topic))
	}
	if cfg.Publishes("clickhouse") {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		chs, err := internalrepo.NewCHReportSink(ctx, ch, cfg.Sink.ClickHouseTable)
		if err != nil {
			return nil, fmt.Errorf("clickhouse sink: %w", err)
		}
		sinks = append(sinks, chs)
	}
	return sinks, nil
}

// ProvideRenderer creates the plot renderer.
func ProvideRenderer(cfg *config.Config, l *applogger.Logger) domsvc.Renderer {
	opts := chart.DefaultOptions()
	opts.DPI = cfg.Output.PlotDPI
	v := chart.NewVisualizer(opts)
	v.SetLogger(l.Component("chart"))
	return v
}

// ProvideTrainer creates the training use case.
func ProvideTrainer(reg *regression.Registry, m repository.Metrics, cfg *config.Config) *usecase.Trainer {
	return usecase.NewTrainer(reg, m, cfg.Training.Parallel)
}

// ProvidePredictor creates the prediction use case.
func ProvidePredictor(m repository.Metrics) *usecase.Predictor {
	return usecase.NewPredictor(m)
}

// ProvideForecastUseCase wires the end-to-end flow.
func ProvideForecastUseCase(
	src repository.SeriesSource,
	trainer *usecase.Trainer,
	predictor *usecase.Predictor,
	renderer domsvc.Renderer,
	sink repository.ReportSink,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	uc := usecase.NewForecastUseCase(src, trainer, predictor, renderer, sink, m)
	uc.SetLogger(l.Component("forecast"))
	return uc
}

// ProvideCache selects Redis when enabled, else an in-process TTL cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func()) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache(), func() {}
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:        cfg.Cache.Redis.Addr,
		Password:    cfg.Cache.Redis.Password,
		DB:          cfg.Cache.Redis.DB,
		Prefix:      cfg.Cache.Redis.Prefix,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unavailable, using in-memory cache", applogger.String("addr", cfg.Cache.Redis.Addr), applogger.Error(err))
		_ = rc.Close()
		return cache.NewTTLCache(), func() {}
	}
	return rc, func() { _ = rc.Close() }
}

// ProvideLimiter creates the per-client rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideForecastHandler creates the HTTP handler for serve mode.
func ProvideForecastHandler(
	l *applogger.Logger,
	uc *usecase.ForecastUseCase,
	c cache.BytesCache,
	lim *ratelimit.Limiter,
	cfg *config.Config,
) *api.ForecastEchoHandler {
	return api.NewForecastEchoHandler(l.Component("api"), uc, c, cfg.Cache.TTL, lim)
}

// ProvideHealthChecks probes the infrastructure the API depends on.
func ProvideHealthChecks(ch *pkgch.Client, c cache.BytesCache) xhttp.HealthChecks {
	checks := xhttp.HealthChecks{}
	if ch != nil {
		checks["clickhouse"] = ch.Health
	}
	if p, ok := c.(interface{ Ping(context.Context) error }); ok {
		checks["redis"] = p.Ping
	}
	return checks
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	uc *usecase.ForecastUseCase,
	h *api.ForecastEchoHandler,
	reg *prometheus.Registry,
	checks xhttp.HealthChecks,
	sink repository.ReportSink,
) *server.App {
	return server.New(cfg, l, uc, h, reg, checks, io.Closer(sink))
}
