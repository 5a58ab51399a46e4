package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/cistern-configurator/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cistern-configurator/internal/adapter/kafka"
	"github.com/couchcryptid/cistern-configurator/internal/calculator"
	"github.com/couchcryptid/cistern-configurator/internal/config"
	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := refdata.NewSource(cfg.DataSource, cfg.DataFetchTimeout, logger)
	loader := refdata.NewLoader(source, refdata.LoaderConfig{
		RainfallName: cfg.RainfallFile,
		CatalogName:  cfg.CatalogFile,
		MaxRetries:   cfg.DataLoadRetries,
	}, logger, metrics)
	store := refdata.NewStore()

	engine := domain.DefaultEngine()
	engine.Sizing.StorageDays = cfg.StorageDays
	engine.Sizing.YieldFraction = cfg.YieldFraction

	svc := calculator.New(store, loader, engine, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Calculations are blocked until the first load succeeds.
	if _, err := svc.Reload(ctx); err != nil {
		logger.Error("initial reference data load failed", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, httpadapter.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var consumer *kafkaadapter.Consumer
	if cfg.SnapshotFeedEnabled() {
		consumer = kafkaadapter.NewConsumer(cfg, store, logger, metrics)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("snapshot consumer error", "error", err)
			}
		}()
		logger.Info("snapshot feed enabled", "topic", cfg.KafkaSnapshotTopic, "group_id", cfg.KafkaGroupID)
	} else {
		logger.Info("snapshot feed disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka consumer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
