package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/climate-choropleth/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-choropleth/internal/adapter/kafka"
	"github.com/couchcryptid/climate-choropleth/internal/adapter/localfs"
	"github.com/couchcryptid/climate-choropleth/internal/adapter/remote"
	"github.com/couchcryptid/climate-choropleth/internal/app"
	"github.com/couchcryptid/climate-choropleth/internal/config"
	"github.com/couchcryptid/climate-choropleth/internal/observability"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := app.Dispatch{
		Remote: remote.NewCachedFetcher(remote.NewClient(cfg.FetchTimeout, logger), cfg.FetchCacheSize, metrics),
		Local:  localfs.Fetcher{},
	}

	// Interaction events are feature-flagged via EVENTS_ENABLED / KAFKA_BROKERS.
	var (
		writer    *kafkaadapter.Writer
		publisher *app.Publisher
	)
	if cfg.EventsEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = app.NewPublisher(writer, cfg.BatchSize, cfg.BatchFlushInterval, logger, metrics)
		logger.Info("interaction events enabled", "topic", cfg.KafkaEventsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("interaction events disabled")
	}

	pair := app.New(app.Options{
		Width:       cfg.MapWidth,
		Height:      cfg.MapHeight,
		LegendWidth: cfg.LegendWidth,
		Years:       cfg.Years(),
		Sources:     app.SourcesFromConfig(cfg),
		Fetcher:     fetcher,
		Publisher:   publisher,
		Logger:      logger,
		Metrics:     metrics,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, pair, logger)
	if cfg.LogLevel == "debug" {
		srv.WithAccessLog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start event publisher.
	published := make(chan struct{})
	go func() {
		defer close(published)
		if publisher == nil {
			return
		}
		if err := publisher.Run(ctx); err != nil {
			logger.Error("event publisher error", "error", err)
		}
	}()

	// Start panel pair.
	go func() {
		if err := pair.Run(ctx); err != nil {
			logger.Error("panel pair error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-published:
	case <-shutdownCtx.Done():
		logger.Warn("event publisher did not drain before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
