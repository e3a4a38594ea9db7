// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "github.com/ManuGH/fieldpulse/internal/domain/model"

// Environment keys. Every key carries EnvPrefix.
const (
	EnvLogLevel       = EnvPrefix + "LOG_LEVEL"
	EnvLogFormat      = EnvPrefix + "LOG_FORMAT"
	EnvListenAddr     = EnvPrefix + "LISTEN_ADDR"
	EnvRateLimit      = EnvPrefix + "RATE_LIMIT"
	EnvRateWindow     = EnvPrefix + "RATE_WINDOW"
	EnvCatalogPath    = EnvPrefix + "CATALOG_PATH"
	EnvCatalogWatch   = EnvPrefix + "CATALOG_WATCH"
	EnvCacheBackend   = EnvPrefix + "CACHE_BACKEND"
	EnvCacheTTL       = EnvPrefix + "CACHE_TTL"
	EnvRedisAddr      = EnvPrefix + "REDIS_ADDR"
	EnvRedisPassword  = EnvPrefix + "REDIS_PASSWORD"
	EnvRedisDB        = EnvPrefix + "REDIS_DB"
	EnvKafkaBrokers   = EnvPrefix + "KAFKA_BROKERS"
	EnvKafkaTopic     = EnvPrefix + "KAFKA_TOPIC"
	EnvTracing        = EnvPrefix + "TRACING_ENABLED"
	EnvOTLPExporter   = EnvPrefix + "OTLP_EXPORTER"
	EnvOTLPEndpoint   = EnvPrefix + "OTLP_ENDPOINT"
	EnvTraceSample    = EnvPrefix + "TRACE_SAMPLE_RATE"
	EnvCoolingAfter   = EnvPrefix + "COOLING_AFTER_DAYS"
	EnvAtRiskAfter    = EnvPrefix + "AT_RISK_AFTER_DAYS"
	EnvDormantAfter   = EnvPrefix + "DORMANT_AFTER_DAYS"
	EnvContactStreak  = EnvPrefix + "SUSTAINED_CONTACT_STREAK"
	EnvDefaultLocale  = EnvPrefix + "DEFAULT_LOCALE"
	EnvBriefingLimit  = EnvPrefix + "BRIEFING_LIMIT"
	EnvNegativeWindow = EnvPrefix + "NEGATIVE_WINDOW_DAYS"
)

// mergeEnvConfig overlays environment values on cfg.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	env := l.env

	env.String(EnvLogLevel, &cfg.Log.Level)
	env.String(EnvLogFormat, &cfg.Log.Format)

	env.String(EnvListenAddr, &cfg.API.ListenAddr)
	env.Int(EnvRateLimit, &cfg.API.RateLimit)
	env.Duration(EnvRateWindow, &cfg.API.RateWindow)

	env.String(EnvCatalogPath, &cfg.Catalog.Path)
	env.Bool(EnvCatalogWatch, &cfg.Catalog.Watch)

	env.String(EnvCacheBackend, &cfg.Cache.Backend)
	env.Duration(EnvCacheTTL, &cfg.Cache.TTL)
	env.String(EnvRedisAddr, &cfg.Cache.RedisAddr)
	env.String(EnvRedisPassword, &cfg.Cache.RedisPassword)
	env.Int(EnvRedisDB, &cfg.Cache.RedisDB)

	env.List(EnvKafkaBrokers, &cfg.Dispatch.Brokers)
	env.String(EnvKafkaTopic, &cfg.Dispatch.Topic)

	env.Bool(EnvTracing, &cfg.Telemetry.Enabled)
	env.String(EnvOTLPExporter, &cfg.Telemetry.Exporter)
	env.String(EnvOTLPEndpoint, &cfg.Telemetry.Endpoint)
	env.Float(EnvTraceSample, &cfg.Telemetry.SampleRate)

	th := &cfg.Engine.Thresholds
	env.Int(EnvCoolingAfter, &th.CoolingAfterDays)
	env.Int(EnvAtRiskAfter, &th.AtRiskAfterDays)
	env.Int(EnvDormantAfter, &th.DormantAfterDays)
	env.Int(EnvContactStreak, &th.SustainedContactStreak)

	var locale string
	env.String(EnvDefaultLocale, &locale)
	if locale != "" {
		cfg.Engine.DefaultLocale = model.Locale(locale)
	}
	env.Int(EnvBriefingLimit, &cfg.Engine.Ranking.Limit)
	env.Int(EnvNegativeWindow, &cfg.Engine.Ranking.NegativeWindowDays)
}
