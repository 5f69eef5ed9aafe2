package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"tourmap/internal/app"
	"tourmap/internal/config"
	"tourmap/internal/httpapi"
	"tourmap/pkg/graceful"
	"tourmap/pkg/kafkaclient"
	"tourmap/pkg/logger"
	"tourmap/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New("tourmap-server", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, cancel := graceful.Context(context.Background(), zl)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	backend, closeBackend, err := app.OpenBackend(ctx, cfg, zl.Named("storage"))
	if err != nil {
		return err
	}
	defer closeBackend()

	tours := app.TourData(cfg, zl)
	r := app.Resolver(cfg, tours, backend, m, zl)

	var publisher httpapi.Publisher
	if cfg.KafkaEnabled() {
		producer := kafkaclient.NewProducer(cfg.KafkaTopic, cfg.KafkaBroker)
		defer func() { _ = producer.Close() }()
		publisher = producer
		zl.Info("warm requests enabled", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(r, tours, publisher, zl.Named("http"))
	if clearer, ok := backend.(httpapi.Clearer); ok {
		handler.WithClearer(clearer)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(handler, reg, m, zl.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", cfg.Addr), zap.String("cache_backend", cfg.CacheBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	zl.Info("server stopped")
	return nil
}
