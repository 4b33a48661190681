package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/goals"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
)

var (
	flagJSON    bool
	flagBackend string
	flagSeedDir string
	flagDBPath  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "finctl",
	Short:         "Personal finance analytics from the command line",
	Long:          "Summaries, insights, forecasts and budget progress over the fintrack ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSummary,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Data backend: memory, sqlite or sheets (default from DATA_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&flagSeedDir, "seed-dir", "", "CSV seed directory for the memory backend")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}

// session is what every subcommand reads from.
type session struct {
	analytics *services.AnalyticsService
	goals     *goals.Repository
	backend   *backend.Backend
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		slog.Warn("Failed to close backend", log.FieldError, err)
	}
}

// open loads configuration from the environment, applies flag overrides and
// opens the backend.
func open(ctx context.Context) (*session, error) {
	cli.LoadEnvFile()

	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, Component: log.ComponentCLI, Output: os.Stderr})
	log.SetDefault(logger)

	cfg := config.Load()
	if flagBackend != "" {
		cfg.DataBackend = flagBackend
	}
	if flagSeedDir != "" {
		cfg.SeedDir = flagSeedDir
	}
	if flagDBPath != "" {
		cfg.SQLiteDBPath = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	b, err := backend.NewFactory(logger).Open(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}

	m := metrics.New()
	return &session{
		analytics: services.NewAnalyticsService(
			services.NewTransactionService(b.Ledger, m), m,
			services.WithForecastMonths(cfg.ForecastDefaultMonths),
		),
		goals:   goals.NewRepository(b.KV),
		backend: b,
	}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
