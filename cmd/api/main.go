package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/exercisetracker/internal/api"
	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/events"
	"example.com/exercisetracker/internal/logging"
	"example.com/exercisetracker/internal/observability"
	"example.com/exercisetracker/internal/persistence"
	httptransport "example.com/exercisetracker/internal/transport/http"
	"example.com/exercisetracker/internal/web"
)

type publisher interface {
	domain.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := logging.New("info")
		bootstrap.Fatal("invalid configuration", zap.Error(err))
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	store, err := persistence.Open(connectCtx, cfg.DatabaseURL, persistence.Options{Database: cfg.MongoDatabase})
	connectCancel()
	if err != nil {
		logger.Fatal("failed to connect to store", zap.Error(err))
	}
	backend, _ := persistence.Backend(cfg.DatabaseURL)
	logger.Info("store connected", zap.String("backend", backend))

	var eventPublisher publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		eventPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic, cfg.PublishTimeout)
		logger.Info("event publishing enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.EventsTopic),
		)
	}

	service := domain.NewService(store,
		domain.WithEventPublisher(eventPublisher),
		domain.WithLogger(logger.Named("domain")),
		domain.WithPublishFailureHook(observability.RecordPublishFailure),
		domain.WithPublishTimeout(cfg.PublishTimeout),
	)

	mux := http.NewServeMux()
	api.NewHandler(service, logger.Named("api")).RegisterRoutes(mux)
	web.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httptransport.NewServer(
		httptransport.DefaultServerConfig(cfg.HTTPAddress),
		httptransport.Chain(mux, httptransport.Instrument(logger.Named("http")), httptransport.CORS),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("exercise tracker listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := eventPublisher.Close(); err != nil {
		logger.Warn("closing event publisher failed", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn("closing store failed", zap.Error(err))
	}
	logger.Info("exercise tracker stopped")
}
