package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fincoach/internal/amqp"
	"fincoach/internal/analytics"
	"fincoach/internal/cache"
	"fincoach/internal/cli"
	apphttp "fincoach/internal/http"
	"fincoach/internal/service"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional: without it the worker's backfill still categorizes
	// everything, just later.
	var publisher service.Publisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, categorization will rely on worker backfill", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	summaryCache := cache.NewLRUCache[analytics.Summary](500, cfg.SummaryCacheTTL)
	trendCache := cache.NewLRUCache[analytics.TrendReport](500, cfg.SummaryCacheTTL)

	cacheManager := cache.NewManager()
	cacheManager.Register(summaryCache)
	cacheManager.Register(trendCache)
	cacheManager.StartCleanup(10 * time.Minute)

	thresholds := analytics.ForecastThresholds{
		OnTrackMonths:  cfg.ForecastOnTrackMonths,
		ModerateMonths: cfg.ForecastModerateMonths,
	}
	svc := service.NewAnalyticsService(repo, publisher, summaryCache, trendCache, thresholds)

	srv := apphttp.NewServer(":"+cfg.Port, svc, repo)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		cacheManager.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fincoach server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
