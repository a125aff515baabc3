// Package config loads process configuration from an optional .env file, an
// optional YAML file, and environment variable overrides, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface for both binaries. Sinks and
// stores consume their sections at construction and never re-read them.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Audit struct {
		// Application and Component seed the ambient context for every request.
		Application string `yaml:"application"`
		Component   string `yaml:"component"`

		// Sink selects the delivery backend: "file" or "stream".
		Sink string `yaml:"sink"`

		File struct {
			Directory         string `yaml:"directory"`
			Prefix            string `yaml:"prefix"`
			Extension         string `yaml:"extension"`
			Overwrite         bool   `yaml:"overwrite"`
			DisableAutoCreate bool   `yaml:"disable_auto_create"`
			LockFile          bool   `yaml:"lock_file"`
		} `yaml:"file"`

		Stream struct {
			Host           string        `yaml:"host"`
			Port           int           `yaml:"port"`
			ConnectTimeout time.Duration `yaml:"connect_timeout"`
			SendBufferSize int           `yaml:"send_buffer_size"`
			CloseGrace     time.Duration `yaml:"close_grace"`
		} `yaml:"stream"`
	} `yaml:"audit"`

	Collector struct {
		Addr string `yaml:"addr"`

		// MetricsAddr is the sidecar HTTP listener exposing /metrics.
		MetricsAddr string `yaml:"metrics_addr"`

		// Store selects the event store backend: "memory" or "postgres".
		Store       string `yaml:"store"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"collector"`

	Payments struct {
		// Store selects the payment store backend: "memory" or "redis".
		Store string        `yaml:"store"`
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"payments"`
}

func defaults() Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Audit.Application = "payment-service"
	cfg.Audit.Component = "payment-processor"
	cfg.Audit.Sink = "stream"
	cfg.Audit.Stream.Host = "127.0.0.1"
	cfg.Audit.Stream.Port = 5170
	cfg.Collector.Addr = ":5170"
	cfg.Collector.MetricsAddr = ":9090"
	cfg.Collector.Store = "memory"
	cfg.Payments.Store = "memory"
	cfg.Payments.TTL = 24 * time.Hour
	return cfg
}

// Load builds the configuration. A missing .env or YAML file is not an error;
// a present but malformed one is.
func Load() (Config, error) {
	// .env populates the environment before the override pass reads it.
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("AUDITTRAIL_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv applies environment variable overrides for the settings most often
// changed per deployment. YAML covers the long tail.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "AUDITTRAIL_ADDR")
	setString(&cfg.Audit.Sink, "AUDITTRAIL_SINK")
	setString(&cfg.Audit.File.Directory, "AUDITTRAIL_LOG_DIR")
	setString(&cfg.Audit.Stream.Host, "AUDITTRAIL_STREAM_HOST")
	setInt(&cfg.Audit.Stream.Port, "AUDITTRAIL_STREAM_PORT")
	setString(&cfg.Collector.Addr, "AUDITTRAIL_COLLECTOR_ADDR")
	setString(&cfg.Collector.Store, "AUDITTRAIL_COLLECTOR_STORE")
	setString(&cfg.Collector.PostgresDSN, "AUDITTRAIL_POSTGRES_DSN")
	setString(&cfg.Payments.Store, "AUDITTRAIL_PAYMENTS_STORE")
	setString(&cfg.Payments.Redis.Addr, "AUDITTRAIL_REDIS_ADDR")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
