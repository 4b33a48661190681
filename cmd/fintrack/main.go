package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/goals"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
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

	m := metrics.New()

	txCache := cache.NewLRUCache[[]core.Transaction](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(txCache)

	analytics := services.NewAnalyticsService(
		services.NewTransactionService(b.Ledger, m), m,
		services.WithCache(txCache),
		services.WithForecastMonths(cfg.ForecastDefaultMonths),
	)

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Records are still written; only change events are lost.
			logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err)
		} else {
			publisher = client
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
		}
	}

	records := services.NewRecordService(b.Ledger, goals.NewRepository(b.KV), publisher, m)
	records.OnChange(analytics.Invalidate)
	records.AddCloser(b.Close)

	snapshots := services.NewSnapshotRepository(b.KV)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Analytics:          analytics,
		Records:            records,
		Snapshots:          snapshots,
		Metrics:            m,
		Logger:             logger,
		Ready:              b.Ready,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := records.Close(); err != nil {
			logger.Error("Failed to release resources", log.FieldError, err)
		}
	})

	if cfg.CacheTTL > 0 {
		cacheManager.Start(ctx, cfg.CacheTTL)
	}

	// Only sqlite snapshots are visible to cmd/insights-worker; other
	// backends refresh them in-process.
	if b.Type != backend.SQLite {
		go func() {
			w := worker.NewInsightsWorker(analytics, snapshots, nil, cfg.SnapshotInterval, m)
			if err := w.Run(ctx); err != nil {
				logger.Error("Snapshot refresher stopped", log.FieldError, err)
			}
		}()
	}

	logger.Info("Starting fintrack server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		log.FieldBackend, b.Type,
		"rate_limit_per_minute", cfg.RateLimitPerMinute)

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server failed to start", log.FieldError, err, "addr", srv.Addr)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	cacheManager.Wait()
	logger.Info("Server shutdown completed")
}
