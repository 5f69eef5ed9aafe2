package app

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"tourmap/internal/config"
	"tourmap/internal/geocache"
	"tourmap/internal/mapview"
	"tourmap/internal/storage"
	"tourmap/internal/tourdata"
	coords "tourmap/models"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	t.Run("memory", func(t *testing.T) {
		cfg := config.New()
		b, closeFn, err := OpenBackend(ctx, cfg, log)
		if err != nil {
			t.Fatal(err)
		}
		defer closeFn()
		if _, ok := b.(*storage.Memory); !ok {
			t.Errorf("backend = %T, want *storage.Memory", b)
		}
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.New()
		cfg.CacheBackend = config.BackendRedis
		cfg.RedisAddr = mr.Addr()

		b, closeFn, err := OpenBackend(ctx, cfg, log)
		if err != nil {
			t.Fatal(err)
		}
		defer closeFn()

		cache := geocache.New(b)
		if err := cache.Store(ctx, "Oslo, Norway", coords.Coordinate{Lat: 59.9, Lon: 10.7}); err != nil {
			t.Fatal(err)
		}
		if !mr.Exists(redisPrefix + "geo:oslo, norway") {
			t.Errorf("keys = %v", mr.Keys())
		}
	})

	t.Run("redis unreachable", func(t *testing.T) {
		cfg := config.New()
		cfg.CacheBackend = config.BackendRedis
		cfg.RedisAddr = "127.0.0.1:1"
		if _, closeFn, err := OpenBackend(ctx, cfg, log); err == nil {
			closeFn()
			t.Fatal("expected connection error")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.New()
		cfg.CacheBackend = "etcd"
		_, closeFn, err := OpenBackend(ctx, cfg, log)
		closeFn()
		if !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("err = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestResolver_UsesConfiguredBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.New()
	mem := storage.NewMemory()

	cache := geocache.New(mem)
	if err := cache.Store(ctx, "paris, france", coords.Coordinate{Lat: 48.85, Lon: 2.35}); err != nil {
		t.Fatal(err)
	}

	// Served from cache, so the default Nominatim URL is never contacted.
	r := Resolver(cfg, tourdata.Embedded{{Name: "paris-france"}}, mem, nil, zaptest.NewLogger(t))
	res, err := r.Resolve(ctx, 1, mapview.New())
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached != 1 || len(res.Markers) != 1 {
		t.Errorf("result = %+v", res)
	}

	if TourData(cfg, zaptest.NewLogger(t)) == nil {
		t.Error("TourData returned nil")
	}
}
