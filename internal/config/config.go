// Package config defines service configuration and how it is loaded.
package config

import (
	"time"

	"tourmap/internal/storage"
)

// Cache backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "json" or "console".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	GroupieBaseURL string `koanf:"groupie_base_url"`
	NominatimURL   string `koanf:"nominatim_url"`
	UserAgent      string `koanf:"user_agent"`

	// GeocodeDelay is the minimum spacing between upstream geocoding calls.
	GeocodeDelay time.Duration `koanf:"geocode_delay"`
	HTTPTimeout  time.Duration `koanf:"http_timeout"`
	ArtistsTTL   time.Duration `koanf:"artists_ttl"`

	// CacheBackend selects the persistent cache: memory, redis, s3, postgres.
	CacheBackend string `koanf:"cache_backend"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	S3Endpoint  string `koanf:"s3_endpoint"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3UseSSL    bool   `koanf:"s3_use_ssl"`

	DatabaseURL string `koanf:"database_url"`

	KafkaBroker  string `koanf:"kafka_broker"`
	KafkaTopic   string `koanf:"kafka_topic"`
	KafkaGroupID string `koanf:"kafka_group_id"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "json",
		Addr:           ":8080",
		GroupieBaseURL: "https://groupietrackers.herokuapp.com/api",
		NominatimURL:   "https://nominatim.openstreetmap.org",
		UserAgent:      "tourmap/1.0",
		GeocodeDelay:   time.Second,
		HTTPTimeout:    10 * time.Second,
		ArtistsTTL:     5 * time.Minute,
		CacheBackend:   BackendMemory,
		RedisAddr:      "localhost:6379",
		KafkaTopic:     "tourmap.warm",
		KafkaGroupID:   "tourmap-warmer",
	}
}

// S3 returns the object store settings.
func (c *Config) S3() storage.S3Config {
	return storage.S3Config{
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Bucket:    c.S3Bucket,
		UseSSL:    c.S3UseSSL,
	}
}

// KafkaEnabled reports whether a broker is configured.
func (c *Config) KafkaEnabled() bool {
	return c.KafkaBroker != "" && c.KafkaTopic != ""
}
