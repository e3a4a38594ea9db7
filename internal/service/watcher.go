package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/metrics"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultCatalogDebounce coalesces the burst of events an editor save produces.
const DefaultCatalogDebounce = 300 * time.Millisecond

// CatalogWatcher reloads a catalog file into a Service when it changes.
// A file that fails to load or validate leaves the active catalog in place.
type CatalogWatcher struct {
	svc      *Service
	path     string
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCatalogWatcher watches path on behalf of svc.
func NewCatalogWatcher(svc *Service, path string) *CatalogWatcher {
	return &CatalogWatcher{
		svc:      svc,
		path:     filepath.Clean(path),
		debounce: DefaultCatalogDebounce,
		logger:   xglog.WithComponent("catalog"),
	}
}

// Reload loads the file and activates it when valid.
func (w *CatalogWatcher) Reload(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := playbook.LoadFile(w.path, agent.FactSchema())
	if err != nil {
		metrics.RecordCatalogReload(0, err)
		w.logger.Error().Err(err).
			Str(xglog.FieldEvent, "catalog.reload_failed").
			Str(xglog.FieldPath, w.path).
			Int(xglog.FieldCount, w.svc.Catalog().Len()).
			Msg("catalog reload failed, keeping active catalog")
		return fmt.Errorf("reload catalog: %w", err)
	}
	metrics.RecordCatalogReload(c.Len(), nil)
	if err := w.svc.ReplaceCatalog(ctx, c); err != nil {
		// The new catalog is active; only the cache flush failed.
		return err
	}
	w.logger.Info().
		Str(xglog.FieldEvent, xglog.EventCatalogReloaded).
		Str(xglog.FieldPath, w.path).
		Int(xglog.FieldCount, c.Len()).
		Strs("playbooks", c.IDs()).
		Msg("playbook catalog reloaded")
	return nil
}

// Start begins watching. The watch loop exits when ctx is cancelled or Stop
// is called.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and config management replace files by rename.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch catalog dir: %w", err)
	}
	w.watcher = fw
	w.done = make(chan struct{})

	w.logger.Info().Str(xglog.FieldEvent, "catalog.watcher_started").Str(xglog.FieldPath, w.path).Msg("watching playbook catalog")
	go w.loop(ctx)
	return nil
}

func (w *CatalogWatcher) loop(ctx context.Context) {
	defer close(w.done)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			w.logger.Info().Str(xglog.FieldEvent, "catalog.watcher_stopped").Msg("catalog watcher stopped")
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug().Str(xglog.FieldEvent, "catalog.file_changed").Str("op", ev.Op.String()).Msg("catalog file changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				_ = w.Reload(ctx)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Str(xglog.FieldEvent, "catalog.watcher_error").Msg("catalog watcher error")
		}
	}
}

// Stop closes the watcher and waits for the loop to exit.
func (w *CatalogWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	_ = w.watcher.Close()
	<-w.done
}
