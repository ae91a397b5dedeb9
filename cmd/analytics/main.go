package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/flood-data-analytics/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-data-analytics/internal/adapter/kafka"
	"github.com/couchcryptid/flood-data-analytics/internal/analytics"
	"github.com/couchcryptid/flood-data-analytics/internal/config"
	"github.com/couchcryptid/flood-data-analytics/internal/observability"
	"github.com/couchcryptid/flood-data-analytics/internal/pipeline"
	"github.com/couchcryptid/flood-data-analytics/internal/store"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	readings := store.NewMemoryStore(cfg.SeriesMaxPoints)
	svc := analytics.New(readings, analytics.Config{
		Resolution: cfg.AlignResolution,
		CacheSize:  cfg.ResultCacheSize,
	}, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)

	// Summary publishing is feature-flagged via SUMMARY_PUBLISH_ENABLED.
	var (
		writer    *kafkaadapter.Writer
		publisher analytics.SummaryPublisher
	)
	if cfg.SummaryPublishEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("summary publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("summary publishing disabled")
	}

	loader := analytics.NewSummaryLoader(readings, publisher, cfg.DefaultWindow, logger, metrics)
	p := pipeline.New(reader, pipeline.NewTransformer(), loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, svc, cfg.DefaultWindow, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
