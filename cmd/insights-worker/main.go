// Command insights-worker keeps the stored insight snapshot current. It
// refreshes on start-up, on every change event consumed from AMQP and on a
// fixed interval.
package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	logger.Info("Starting insights-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	b, err := backend.NewFactory(logger).Open(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err, log.FieldBackend, bcfg.Type)
		os.Exit(1)
	}
	defer b.Close()
	if b.Type != backend.SQLite {
		logger.Warn("Snapshots are kept in process memory and will not reach the API server",
			log.FieldBackend, b.Type)
	}

	m := metrics.New()
	analytics := services.NewAnalyticsService(
		services.NewTransactionService(b.Ledger, m), m,
		services.WithForecastMonths(cfg.ForecastDefaultMonths),
	)
	snapshots := services.NewSnapshotRepository(b.KV)

	var source worker.ChangeSource
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		source = client
		logger.Info("Consuming change events", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, refreshing on interval only", "interval", cfg.SnapshotInterval)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	w := worker.NewInsightsWorker(analytics, snapshots, source, cfg.SnapshotInterval, m)
	if err := w.Run(ctx); err != nil {
		logger.Error("Insights worker failed", log.FieldError, err)
		b.Close()
		os.Exit(1)
	}
	if ctx.Err() == nil {
		logger.Info("Nothing left to schedule, exiting")
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Insights-worker shutdown complete")
}
