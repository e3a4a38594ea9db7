// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/fieldpulse/internal/config"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/service"
	"github.com/rs/zerolog"
)

// App owns the long-lived runtime (watchers, reload wiring) and delegates
// server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	catalog      *service.CatalogWatcher
	watchCatalog bool
	reloadSignal os.Signal
}

// Options are the optional collaborators of an App.
type Options struct {
	ConfigHolder *config.ConfigHolder
	// Catalog reloads on SIGHUP; with WatchCatalog it also follows file changes.
	Catalog      *service.CatalogWatcher
	WatchCatalog bool
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, opts Options) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    opts.ConfigHolder,
		catalog:      opts.Catalog,
		watchCatalog: opts.WatchCatalog,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Watchers are best-effort: a missing directory must not block serving.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
		}
	}
	if a.catalog != nil && a.watchCatalog {
		if err := a.catalog.Start(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "catalog.watcher_start_failed").Msg("failed to start catalog watcher")
		}
	}

	if a.cfgHolder != nil {
		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		previous := a.cfgHolder.Get()

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case next := <-applyCh:
					a.applyConfig(previous, next)
					previous = next
				}
			}
		})
	}

	if a.reloadSignal != nil && (a.cfgHolder != nil || a.catalog != nil) {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(xglog.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config and catalog")
					a.reload(ctx)
				}
			}
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// reload re-reads the config file and the playbook catalog. Failures keep
// the active versions.
func (a *App) reload(ctx context.Context) {
	if a.cfgHolder != nil {
		if err := a.cfgHolder.Reload(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("config reload failed")
		}
	}
	if a.catalog != nil {
		if err := a.catalog.Reload(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "catalog.reload_failed").Msg("catalog reload failed")
		}
	}
}

// applyConfig reports sections a running daemon cannot swap. The log level
// is already applied by the holder.
func (a *App) applyConfig(old, next config.AppConfig) []string {
	var pending []string
	for _, s := range []struct {
		name     string
		old, new any
	}{
		{"engine", old.Engine, next.Engine},
		{"catalog", old.Catalog, next.Catalog},
		{"api", old.API, next.API},
		{"cache", old.Cache, next.Cache},
		{"dispatch", old.Dispatch, next.Dispatch},
		{"telemetry", old.Telemetry, next.Telemetry},
	} {
		if !reflect.DeepEqual(s.old, s.new) {
			pending = append(pending, s.name)
		}
	}
	if len(pending) > 0 {
		a.logger.Warn().
			Str(xglog.FieldEvent, "config.restart_required").
			Strs("sections", pending).
			Msg("config changes take effect after restart")
	}
	return pending
}
