package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"StockPricePrediction/pkg/util"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Log         LogConfig        `yaml:"log"`
	Source      SourceConfig     `yaml:"source"`
	Models      []ModelConfig    `yaml:"models" validate:"dive"`
	Training    TrainingConfig   `yaml:"training"`
	Output      OutputConfig     `yaml:"output"`
	Sink        SinkConfig       `yaml:"sink"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Server      ServerConfig     `yaml:"server"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Cache       CacheConfig      `yaml:"cache"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
}

type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stderr"`
	TimeFormat string `yaml:"time_format" default:"2006-01-02T15:04:05Z07:00"`
}

type SourceConfig struct {
	Type string `yaml:"type" default:"csv" validate:"oneof=csv clickhouse"`
	CSV  struct {
		Path        string `yaml:"path"`
		Dir         string `yaml:"dir"`
		DateColumn  string `yaml:"date_column" default:"Date"`
		ValueColumn string `yaml:"value_column" default:"Close" validate:"required"`
	} `yaml:"csv"`
	ClickHouse struct {
		Table        string `yaml:"table" default:"market.daily_prices"`
		DateColumn   string `yaml:"date_column" default:"day"`
		ValueColumn  string `yaml:"value_column" default:"close"`
		SymbolColumn string `yaml:"symbol_column" default:"symbol"`
		Limit        int    `yaml:"limit" validate:"gte=0"`
	} `yaml:"clickhouse"`
}

// ModelConfig describes one registry entry. Gamma is "scale" or a positive number.
type ModelConfig struct {
	Name    string  `yaml:"name" validate:"required"`
	Kernel  string  `yaml:"kernel" validate:"required,oneof=linear poly polynomial rbf radial"`
	C       float64 `yaml:"c" validate:"gt=0"`
	Epsilon float64 `yaml:"epsilon" validate:"gte=0"`
	Gamma   string  `yaml:"gamma"`
	Degree  int     `yaml:"degree" validate:"gte=0"`
	Coef0   float64 `yaml:"coef0"`
	Tol     float64 `yaml:"tol" validate:"gte=0"`
	MaxIter int     `yaml:"max_iter" validate:"gte=0"`
}

type TrainingConfig struct {
	Parallel bool `yaml:"parallel"`
}

type OutputConfig struct {
	PlotPath   string `yaml:"plot_path" default:"svr_models.png"`
	ReportPath string `yaml:"report_path" default:"predictions.json"`
	PlotDPI    int    `yaml:"plot_dpi" default:"150" validate:"gt=0"`
}

type SinkConfig struct {
	// Publish lists extra sinks fed alongside the report file.
	Publish         []string `yaml:"publish" validate:"dive,oneof=kafka clickhouse"`
	ClickHouseTable string   `yaml:"clickhouse_table" default:"market.svr_predictions"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic" default:"stock.predictions"`
	RequiredAcks int      `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"100ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"producer"`
}

type ClickHouseConfig struct {
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"default"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

type CacheConfig struct {
	TTL   time.Duration `yaml:"ttl" default:"5m"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"stockpred:"`
	} `yaml:"redis"`
}

type RateLimitConfig struct {
	Capacity     float64 `yaml:"capacity" default:"10" validate:"gt=0"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"1" validate:"gt=0"`
}

var validate = validator.New()

// Default returns a valid configuration without reading any file.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("STOCK_CSV"); v != "" {
		c.Source.CSV.Path = v
	}
	if v := getenv("SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("SINK"); v != "" {
		c.Sink.Publish = util.SplitCSV(v)
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q (%v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	seen := make(map[string]struct{}, len(c.Models))
	for _, m := range c.Models {
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("models: duplicate name %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	if c.Publishes("kafka") && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when publishing to kafka")
	}
	return nil
}

// Publishes reports whether sink is listed in sink.publish.
func (c *Config) Publishes(sink string) bool {
	for _, s := range c.Sink.Publish {
		if s == sink {
			return true
		}
	}
	return false
}
