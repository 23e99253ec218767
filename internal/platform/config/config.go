// Package config loads service configuration from an optional YAML file with
// environment variable overrides. Defaults cover local development; deployed
// environments override through MHR_ prefixed variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "MHR_"

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Payment  PaymentConfig  `koanf:"payment"`
	Auth     AuthConfig     `koanf:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DatabaseConfig holds PostgreSQL settings. An empty DSN selects the
// in-memory store, which only makes sense for local development and tests.
type DatabaseConfig struct {
	DSN          string        `koanf:"dsn"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	MaxIdleConns int           `koanf:"max_idle_conns"`
	ConnLifetime time.Duration `koanf:"conn_lifetime"`
}

// RedisConfig holds Redis settings for the document id cache. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// KafkaConfig holds event publishing settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers     []string `koanf:"brokers"`
	ReportTopic string   `koanf:"report_topic"`
	RecordTopic string   `koanf:"record_topic"`
}

// PaymentConfig holds payment service settings.
type PaymentConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

// AuthConfig holds JWT verification settings.
type AuthConfig struct {
	SigningKey string `koanf:"signing_key"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			ConnLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			ReportTopic: "mhr.registration.reports",
			RecordTopic: "mhr.document.records",
		},
		Auth: AuthConfig{SigningKey: "dev-secret-key-change-in-production"},
	}
}

// Load reads configuration in three layers, highest precedence last:
// built-in defaults, the YAML file at path (skipped when path is empty),
// then MHR_ prefixed environment variables such as MHR_SERVER_ADDR and
// MHR_DATABASE_DSN.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envLookup := buildEnvLookup()
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			if koanfKey, ok := envLookup[key]; ok {
				return koanfKey, value
			}
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// buildEnvLookup maps env-style keys to dotted koanf keys so variables with
// underscores inside a field name, like MHR_SERVER_READ_HEADER_TIMEOUT,
// resolve unambiguously.
func buildEnvLookup() map[string]string {
	keys := []string{
		"server.addr", "server.read_header_timeout", "server.shutdown_timeout",
		"log.level", "log.format",
		"database.dsn", "database.max_open_conns", "database.max_idle_conns", "database.conn_lifetime",
		"redis.url", "redis.pool_size", "redis.min_idle_conns",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
		"kafka.brokers", "kafka.report_topic", "kafka.record_topic",
		"payment.base_url", "payment.api_key",
		"auth.signing_key",
	}
	lookup := make(map[string]string, len(keys))
	for _, key := range keys {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
	}
	return lookup
}
