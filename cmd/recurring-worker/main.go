// Command recurring-worker materialises due recurring rules into ledger
// records. Rules live in SQLite only, so it opens the database directly
// whatever DATA_BACKEND says.
package main

import (
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/goals"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	logger.Info("Starting recurring-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			publisher = client
			logger.Info("AMQP client initialized")
		}
	} else {
		logger.Info("AMQP disabled, change events will not be published")
	}

	m := metrics.New()
	records := services.NewRecordService(repo, goals.NewRepository(repo), publisher, m)
	records.AddCloser(repo.Close)
	defer records.Close()

	processor := services.NewRecurringProcessor(repo, records, m)

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := worker.NewRecurringWorker(processor, cfg.RecurringInterval).Run(ctx); err != nil {
		logger.Error("Recurring worker failed", log.FieldError, err)
		records.Close()
		os.Exit(1)
	}
	if ctx.Err() == nil {
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
