// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/validate"
)

// Validate checks the whole configuration and reports every problem at once.
// Errors match validate.ErrInvalid.
func Validate(cfg AppConfig) error {
	v := validate.New()

	engine := cfg.Engine
	v.Custom("engine.thresholds", engine.Thresholds, engine.Thresholds.Validate())
	v.Custom("engine.bands", engine.Bands, engine.Bands.Validate())
	v.Custom("engine.ranking", engine.Ranking, engine.Ranking.Validate())
	validate.OneOf(v, "engine.defaultLocale", engine.DefaultLocale, model.LocaleEnglish, model.LocaleHindi)

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	validate.NonNegative(v, "api.rateLimit", cfg.API.RateLimit)
	if cfg.API.RateLimit > 0 {
		validate.Positive(v, "api.rateWindow", cfg.API.RateWindow)
	}
	validate.Positive(v, "api.maxBodyBytes", cfg.API.MaxBodyBytes)

	validate.OneOf(v, "cache.backend", cfg.Cache.Backend, CacheNone, CacheMemory, CacheRedis)
	if cfg.Cache.Backend == CacheRedis {
		v.NotEmpty("cache.redisAddr", cfg.Cache.RedisAddr)
		validate.Between(v, "cache.redisDB", cfg.Cache.RedisDB, 0, 15)
	}
	if cfg.Cache.Backend != CacheNone {
		validate.Positive(v, "cache.ttl", cfg.Cache.TTL)
	}

	if cfg.Dispatch.Enabled() {
		v.Endpoints("dispatch.brokers", cfg.Dispatch.Brokers)
		v.NotEmpty("dispatch.topic", cfg.Dispatch.Topic)
	}

	validate.OneOf(v, "log.level", cfg.Log.Level, "trace", "debug", "info", "warn", "error")
	validate.OneOf(v, "log.format", cfg.Log.Format, "json", "console")

	if cfg.Telemetry.Enabled {
		validate.OneOf(v, "telemetry.exporter", cfg.Telemetry.Exporter, ExporterGRPC, ExporterHTTP)
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.Unit("telemetry.sampleRate", cfg.Telemetry.SampleRate)
	}

	return v.Err()
}
