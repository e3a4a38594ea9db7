// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/fieldpulse/internal/api"
	"github.com/ManuGH/fieldpulse/internal/cache"
	"github.com/ManuGH/fieldpulse/internal/config"
	"github.com/ManuGH/fieldpulse/internal/daemon"
	"github.com/ManuGH/fieldpulse/internal/dispatch"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/health"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/ManuGH/fieldpulse/internal/resilience"
	"github.com/ManuGH/fieldpulse/internal/service"
	"github.com/ManuGH/fieldpulse/internal/telemetry"
	"github.com/ManuGH/fieldpulse/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves the engine over HTTP until SIGINT or SIGTERM. SIGHUP reloads the
config file and the playbook catalog; an invalid catalog keeps the active one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if listen != "" {
				cfg.API.ListenAddr = listen
			}
			return serve(cmd.Context(), cfg, c.loader)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "override api.listenAddr")
	return cmd
}

const (
	dispatchBreakerThreshold = 5
	dispatchBreakerReset     = 30 * time.Second
)

// serve wires the runtime and blocks until ctx is cancelled.
func serve(ctx context.Context, cfg config.AppConfig, loader *config.Loader) error {
	logger := xglog.WithComponent("daemon")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	hm := health.NewManager(version.Version)

	briefings, err := openCache(ctx, cfg.Cache, hm)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return err
	}

	var publisher dispatch.Publisher = dispatch.NopPublisher{}
	if cfg.Dispatch.Enabled() {
		publisher = dispatch.Guard(
			dispatch.NewKafkaPublisher(dispatch.KafkaConfig{
				Brokers:      cfg.Dispatch.Brokers,
				Topic:        cfg.Dispatch.Topic,
				BatchTimeout: cfg.Dispatch.BatchTimeout,
			}),
			resilience.NewCircuitBreaker("dispatch", dispatchBreakerThreshold, dispatchBreakerReset),
		)
		logger.Info().Strs("brokers", cfg.Dispatch.Brokers).Str("topic", cfg.Dispatch.Topic).Msg("dispatching action plans to Kafka")
	}

	catalog := playbook.Default()
	if cfg.Catalog.Path != "" {
		loaded, err := playbook.LoadFile(cfg.Catalog.Path, agent.FactSchema())
		if err != nil {
			_ = briefings.Close()
			_ = publisher.Close()
			_ = tp.Shutdown(context.Background())
			return fmt.Errorf("load catalog: %w", err)
		}
		catalog = loaded
		hm.RegisterChecker(health.NewFileChecker("catalog_file", cfg.Catalog.Path))
	}

	svc, err := service.New(service.Deps{
		Engine:    cfg.Engine,
		Catalog:   catalog,
		Cache:     briefings,
		Publisher: publisher,
		Logger:    xglog.WithComponent("service"),
	})
	if err != nil {
		_ = briefings.Close()
		_ = publisher.Close()
		_ = tp.Shutdown(context.Background())
		return fmt.Errorf("build service: %w", err)
	}
	hm.RegisterChecker(health.NewCatalogChecker(func() int { return svc.Catalog().Len() }))

	tracingService := ""
	if cfg.Telemetry.Enabled {
		tracingService = cfg.Telemetry.ServiceName
	}
	server := api.New(api.Deps{Service: svc, Health: hm, API: cfg.API, TracingService: tracingService})

	mgr, err := daemon.NewManager(cfg.API, daemon.Deps{Logger: logger, Handler: server.Handler()})
	if err != nil {
		_ = svc.Close()
		_ = tp.Shutdown(context.Background())
		return err
	}
	// LIFO: the service flushes its publisher before telemetry stops exporting.
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("service", func(context.Context) error { return svc.Close() })

	opts := daemon.Options{}
	if loader != nil && loader.Path() != "" {
		holder := config.NewConfigHolder(cfg, loader)
		opts.ConfigHolder = holder
		mgr.RegisterShutdownHook("config_watcher", func(context.Context) error { holder.Stop(); return nil })
	}
	if cfg.Catalog.Path != "" {
		watcher := service.NewCatalogWatcher(svc, cfg.Catalog.Path)
		opts.Catalog = watcher
		opts.WatchCatalog = cfg.Catalog.Watch
		mgr.RegisterShutdownHook("catalog_watcher", func(context.Context) error { watcher.Stop(); return nil })
	}

	logger.Info().
		Str("version", version.Version).
		Int(xglog.FieldCount, catalog.Len()).
		Str("cache", cfg.Cache.Backend).
		Bool("dispatch", cfg.Dispatch.Enabled()).
		Bool("tracing", cfg.Telemetry.Enabled).
		Msg("fieldpulse starting")

	return daemon.NewApp(logger, mgr, opts).Run(ctx)
}

// openCache builds the configured briefing cache. A Redis backend also gets
// a readiness check; a cache outage degrades but does not unready the API.
func openCache(ctx context.Context, cfg config.CacheConfig, hm *health.Manager) (cache.BriefingCache, error) {
	switch cfg.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL,
		}, xglog.WithComponent("cache"))
		if err != nil {
			return nil, fmt.Errorf("open briefing cache: %w", err)
		}
		hm.RegisterChecker(health.NewPingChecker("redis", rc.HealthCheck, false, 2*time.Second))
		return rc, nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.TTL, time.Minute), nil
	default:
		return cache.NopCache{}, nil
	}
}
