package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/collector/internal/control"
	"github.com/vietddude/collector/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
	serve   bool
	symbols []string
)

var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Market data collection service",
	Long:  `Collector fetches daily time-series data from the vendor API, validates it and persists clean datasets.`,
	Run:   runCollector,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&serve, "serve", false, "keep the health server running after the collection finishes")
	rootCmd.PersistentFlags().StringSliceVar(&symbols, "symbols", nil, "override the configured symbol universe")
}

func runCollector(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load Configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if len(symbols) > 0 {
		cfg.Symbols = symbols
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	// Initialize Collector
	app, err := control.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize collector", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal, shutting down...", "signal", sig)
		cancel()
	}()

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start collector", "error", err)
		os.Exit(1)
	}

	slog.Info("Collector started", "config", cfgPath, "symbols", len(cfg.Symbols))

	run, err := app.Collect(ctx)
	if err != nil {
		slog.Error("Collection failed", "error", err)
		shutdown(app)
		os.Exit(1)
	}
	if run != nil {
		met := run.Metrics()
		slog.Info("Collection finished",
			"run_id", run.ID,
			"attempted", met.Attempted,
			"succeeded", met.Succeeded,
			"failed", met.Failed,
			"records", met.TotalRecords)
	}

	if serve {
		<-ctx.Done()
	}
	shutdown(app)
}

func shutdown(app *control.Collector) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
