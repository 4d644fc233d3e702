package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fincoach/internal/amqp"
	"fincoach/internal/cli"
	"fincoach/internal/export"
	gexport "fincoach/internal/export/google"
	"fincoach/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting fincoach-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Summary export is optional; without a spreadsheet ID the worker only
	// categorizes.
	var exporter export.SummaryWriter
	if cfg.ExportSpreadsheetID != "" {
		client, err := gexport.New(context.Background(), cfg.ExportSpreadsheetID, cfg.ExportSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.ExportSpreadsheetID)
	} else {
		logger.Info("Summary export disabled - no EXPORT_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.NewCategorizeWorker(repo, exporter, cfg.CategorizeBatchSize)

	// Recover anything missed while the worker was down.
	logger.Info("Performing startup categorization check...")
	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup categorization check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	go func() {
		handler := func(msg *amqp.CategorizeMessage) error {
			return w.HandleCategorizeMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeCategorize(ctx, handler); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	backfillTicker := time.NewTicker(cfg.CategorizeInterval)
	defer backfillTicker.Stop()

	exportTicker := time.NewTicker(cfg.ExportInterval)
	defer exportTicker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-backfillTicker.C:
				if err := w.Backfill(ctx); err != nil {
					logger.Error("Periodic backfill failed", "error", err)
				}
			case <-exportTicker.C:
				if err := w.ExportMonthlySummaries(ctx, time.Now().UTC()); err != nil {
					logger.Error("Monthly summary export failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
