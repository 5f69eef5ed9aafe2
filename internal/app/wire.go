// Package app assembles the components shared by the binaries from a Config.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tourmap/internal/config"
	"tourmap/internal/geocache"
	"tourmap/internal/resolver"
	"tourmap/internal/storage"
	"tourmap/internal/tourdata"
	"tourmap/pkg/location"
	"tourmap/pkg/metrics"
)

const redisPrefix = "tourmap:"

// OpenBackend connects the persistent cache selected by cfg.CacheBackend.
// The returned close func releases the connection and is never nil.
func OpenBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (geocache.Backend, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.BackendMemory:
		log.Warn("using in-process cache; geocodes are lost on restart")
		return storage.NewMemory(), noop, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		return storage.NewRedis(client, redisPrefix), func() { _ = client.Close() }, nil

	case config.BackendS3:
		s3, err := storage.NewS3Service(cfg.S3(), log)
		if err != nil {
			return nil, noop, err
		}
		if err := s3.CreateBucket(ctx, ""); err != nil {
			return nil, noop, err
		}
		return s3, noop, nil

	case config.BackendPostgres:
		pool, err := storage.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		pg := storage.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		log.Info("connected to postgres")
		return pg, pool.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown cache_backend %q", config.ErrInvalidConfig, cfg.CacheBackend)
}

// TourData returns the data API client.
func TourData(cfg *config.Config, log *zap.Logger) *tourdata.Client {
	return tourdata.NewClient(
		tourdata.WithBaseURL(cfg.GroupieBaseURL),
		tourdata.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		tourdata.WithArtistsTTL(cfg.ArtistsTTL),
		tourdata.WithLogger(log.Named("tourdata")),
	)
}

// Resolver builds the location resolver over source and backend.
func Resolver(cfg *config.Config, source resolver.Source, backend geocache.Backend, m *metrics.Metrics, log *zap.Logger) *resolver.Resolver {
	geocoder := location.NewClient(
		location.WithBaseURL(cfg.NominatimURL),
		location.WithUserAgent(cfg.UserAgent),
		location.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)
	return resolver.New(source, geocoder, geocache.New(backend),
		resolver.WithDelay(cfg.GeocodeDelay),
		resolver.WithLogger(log.Named("resolver")),
		resolver.WithMetrics(m),
	)
}
