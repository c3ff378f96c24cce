package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr).WithComponent(log.ComponentWorker)
	logger.Info("Starting ledger-worker", "backend", cfg.DataBackend)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// The worker consumes events; it never publishes them.
	bcfg.AMQPURL = ""

	factory := backend.NewFactory(logger)
	ctx := context.Background()

	primary, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize primary store", log.FieldError, err)
		os.Exit(1)
	}
	sinks, err := factory.CreateSinks(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize mirror sinks", log.FieldError, err)
		os.Exit(1)
	}
	if len(sinks.Sinks) == 0 {
		logger.Error("No mirror sinks configured: set MIRROR_SQLITE or GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	mirror := services.NewMirror(primary.Store, logger, sinks.Sinks...)
	syncWorker := worker.NewSyncWorker(mirror, logger)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
		if err := sinks.Cleanup(); err != nil {
			logger.Warn("Failed to close mirror sinks", log.FieldError, err)
		}
		if primary.Cleanup != nil {
			if err := primary.Cleanup(); err != nil {
				logger.Warn("Failed to close primary store", log.FieldError, err)
			}
		}
	})

	// Mirror once so changes made while the worker was down reach the sinks
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	go syncWorker.PeriodicSync(ctx, cfg.SyncInterval)

	go func() {
		err := amqpClient.ConsumeChanges(ctx, syncWorker.HandleChange)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	logger.Info("Worker ready",
		log.FieldExchange, cfg.AMQPExchange,
		log.FieldQueue, cfg.AMQPQueue,
		"sinks", mirror.Sinks())

	cli.WaitForShutdown(ctx, done)
}
