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

// Defaults returns the configuration used when neither file nor environment
// say otherwise.
func Defaults() AppConfig {
	return AppConfig{
		Engine: EngineConfig{
			Thresholds:    lifecycle.DefaultThresholds(),
			Bands:         adm.DefaultBands(),
			Ranking:       adm.DefaultPolicy(),
			DefaultLocale: model.DefaultLocale,
		},
		API: APIConfig{
			ListenAddr:      ":8080",
			RateLimit:       120,
			RateWindow:      time.Minute,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     24 * time.Hour,
		},
		Dispatch: DispatchConfig{
			Topic:        "fieldpulse.actions",
			BatchTimeout: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Exporter:    ExporterGRPC,
			Endpoint:    "localhost:4317",
			ServiceName: "fieldpulse",
			SampleRate:  1.0,
		},
	}
}
