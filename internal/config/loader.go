package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	appenv "tourmap/internal/env"
)

const envPrefix = "TOURMAP_"

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. .env files, merged into the process environment
//  3. YAML file if TOURMAP_CONFIG is set
//  4. env (prefix TOURMAP_)
func Load() (*Config, error) {
	if _, err := appenv.LoadEnv(); err != nil {
		return nil, fmt.Errorf("%w: .env: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TOURMAP_CACHE_BACKEND -> cache_backend; keys stay flat.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the binaries cannot run without.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.GeocodeDelay <= 0 {
		return fmt.Errorf("%w: geocode_delay must be positive", ErrInvalidConfig)
	}
	switch c.CacheBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	case BackendS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return fmt.Errorf("%w: s3_endpoint and s3_bucket are required for the s3 backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	return nil
}
