package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"tourmap/internal/app"
	"tourmap/internal/config"
	"tourmap/internal/warmup"
	"tourmap/pkg/graceful"
	"tourmap/pkg/kafkaclient"
	"tourmap/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New("tourmap-warmer", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("warmer exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if !cfg.KafkaEnabled() {
		return errors.New("kafka_broker and kafka_topic are required")
	}

	ctx, cancel := graceful.Context(context.Background(), zl)
	defer cancel()

	backend, closeBackend, err := app.OpenBackend(ctx, cfg, zl.Named("storage"))
	if err != nil {
		return err
	}
	defer closeBackend()

	r := app.Resolver(cfg, app.TourData(cfg, zl), backend, nil, zl)
	warmer := warmup.NewWarmer(r, warmup.WithLogger(zl.Named("warmer")))

	zl.Info("connecting to kafka",
		zap.String("broker", cfg.KafkaBroker),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID))
	consumer := kafkaclient.NewKafkaConsumer(cfg.KafkaTopic, cfg.KafkaGroupID, cfg.KafkaBroker, zl.Named("kafka"))
	consumer.StartConsuming(ctx)
	defer consumer.Stop()

	iterator := warmup.NewIterator(consumer, warmup.DecodeRequest, zl.Named("iterator"))
	warmer.Run(ctx, iterator.Items(ctx))

	warmed, failed := warmer.Stats()
	zl.Info("warmer finished", zap.Int64("warmed", warmed), zap.Int64("failed", failed))
	return nil
}
