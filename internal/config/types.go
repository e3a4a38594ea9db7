// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
)

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version   string          `yaml:"-"`
	Engine    EngineConfig    `yaml:"engine"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	API       APIConfig       `yaml:"api"`
	Cache     CacheConfig     `yaml:"cache"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EngineConfig carries every tunable constant of the domain engine.
type EngineConfig struct {
	Thresholds    lifecycle.Thresholds `yaml:"thresholds"`
	Bands         adm.Bands            `yaml:"bands"`
	Ranking       adm.Policy           `yaml:"ranking"`
	DefaultLocale model.Locale         `yaml:"defaultLocale"`
}

// CatalogConfig points at an operator-authored playbook catalog. An empty
// path runs the built-in defaults.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type APIConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	RateLimit       int           `yaml:"rateLimit"` // requests per RateWindow per client IP; 0 disables
	RateWindow      time.Duration `yaml:"rateWindow"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
	TTL           time.Duration `yaml:"ttl"`
}

// DispatchConfig enables the Kafka hand-off of action plans when Brokers is set.
type DispatchConfig struct {
	Brokers      []string      `yaml:"brokers,omitempty"`
	Topic        string        `yaml:"topic"`
	BatchTimeout time.Duration `yaml:"batchTimeout"`
}

// Enabled reports whether plans are published at all.
func (d DispatchConfig) Enabled() bool { return len(d.Brokers) > 0 }

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Trace exporters.
const (
	ExporterGRPC = "grpc"
	ExporterHTTP = "http"
)

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"serviceName"`
	SampleRate  float64 `yaml:"sampleRate"`
}
