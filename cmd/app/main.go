package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockPricePrediction/internal/di"
	"StockPricePrediction/pkg/config"
	applogger "StockPricePrediction/pkg/logger"
)

type options struct {
	configPath string
	stockCSV   string
	symbol     string
	predictDay int
	plotPath   string
	reportPath string
	logLevel   string
	parallel   bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:           "stockpred",
	Short:         "Stock price prediction with SVR",
	Long:          `Fits rbf, linear and polynomial SVR models to a closing price series, plots them and predicts a day.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd)
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Train the models once and write the plot and report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the forecast HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file (defaults are used when empty)")
	pf.StringVar(&opts.stockCSV, "stock_csv", "", "Path to the CSV file with stock data")
	pf.StringVar(&opts.symbol, "symbol", "", "Symbol to load from the configured source")
	pf.IntVar(&opts.predictDay, "predict_day", 0, "Day index to predict (default: last index + 1)")
	pf.StringVar(&opts.plotPath, "plot", "", "Plot output path")
	pf.StringVar(&opts.reportPath, "report", "", "Report output path")
	pf.StringVar(&opts.logLevel, "log", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&opts.parallel, "parallel", false, "Fit models concurrently")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the command line on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("stock_csv") {
		cfg.Source.CSV.Path = opts.stockCSV
	}
	if flags.Changed("plot") {
		cfg.Output.PlotPath = opts.plotPath
	}
	if flags.Changed("report") {
		cfg.Output.ReportPath = opts.reportPath
	}
	if flags.Changed("log") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("parallel") {
		cfg.Training.Parallel = opts.parallel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func runPredict(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Source.Type == "csv" && cfg.Source.CSV.Path == "" && opts.symbol == "" {
		return errors.New("--stock_csv is required")
	}
	if opts.predictDay < 0 {
		return fmt.Errorf("--predict_day must be >= 0, got %d", opts.predictDay)
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()
	defer app.Close()

	l := app.Logger()
	if _, err := app.Predict(cmd.Context(), opts.symbol, opts.predictDay, os.Stdout); err != nil {
		l.Error("predict failed", applogger.Error(err))
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Logger().Info("serve starting",
		applogger.String("source", cfg.Source.Type),
		applogger.Int("port", cfg.Server.Port),
		applogger.Strings("publish", cfg.Sink.Publish),
	)
	return app.Serve(ctx)
}
