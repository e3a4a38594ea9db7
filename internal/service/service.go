// Package service composes the domain engine with its runtime collaborators:
// the briefing cache, the dispatch publisher, metrics, tracing and logging.
// The domain packages stay pure; everything with side effects lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/cache"
	"github.com/ManuGH/fieldpulse/internal/config"
	"github.com/ManuGH/fieldpulse/internal/dispatch"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/metrics"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/ManuGH/fieldpulse/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// DefaultConcurrency bounds PortfolioBriefings fan-out.
const DefaultConcurrency = 8

// ErrNoCatalog is returned by New without a playbook catalog.
var ErrNoCatalog = errors.New("service requires a playbook catalog")

// Deps are the collaborators of a Service. Nil Cache and Publisher fall back
// to their no-op implementations.
type Deps struct {
	Engine      config.EngineConfig
	Catalog     *playbook.Catalog
	Cache       cache.BriefingCache
	Publisher   dispatch.Publisher
	Logger      zerolog.Logger
	Concurrency int
	// Now defaults to time.Now; briefings without a date use it.
	Now func() time.Time
}

// Service is safe for concurrent use. The catalog can be swapped at runtime;
// every call works against the catalog current at its start.
type Service struct {
	machine     *lifecycle.Machine
	bands       adm.Bands
	policy      adm.Policy
	locale      model.Locale
	catalog     atomic.Pointer[playbook.Catalog]
	cache       cache.BriefingCache
	publisher   dispatch.Publisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	concurrency int
	now         func() time.Time
}

// New validates the engine policy and builds a service.
func New(deps Deps) (*Service, error) {
	if deps.Catalog == nil {
		return nil, ErrNoCatalog
	}
	machine, err := lifecycle.NewMachine(deps.Engine.Thresholds)
	if err != nil {
		return nil, err
	}
	if err := deps.Engine.Bands.Validate(); err != nil {
		return nil, fmt.Errorf("effectiveness bands: %w", err)
	}
	if err := deps.Engine.Ranking.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		machine:     machine,
		bands:       deps.Engine.Bands,
		policy:      deps.Engine.Ranking,
		locale:      taxonomy.ResolveLocale(deps.Engine.DefaultLocale),
		cache:       deps.Cache,
		publisher:   deps.Publisher,
		logger:      deps.Logger,
		tracer:      telemetry.Tracer("fieldpulse/service"),
		concurrency: deps.Concurrency,
		now:         deps.Now,
	}
	if s.cache == nil {
		s.cache = cache.NopCache{}
	}
	if s.publisher == nil {
		s.publisher = dispatch.NopPublisher{}
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.catalog.Store(deps.Catalog)
	metrics.SetCatalogSize(deps.Catalog.Len())
	return s, nil
}

// Catalog returns the active playbook catalog.
func (s *Service) Catalog() *playbook.Catalog {
	return s.catalog.Load()
}

// Thresholds returns the lifecycle limits in force.
func (s *Service) Thresholds() lifecycle.Thresholds {
	return s.machine.Thresholds()
}

// DefaultLocale is the locale used when a request names none.
func (s *Service) DefaultLocale() model.Locale {
	return s.locale
}

// Locale resolves a requested locale, falling back to the configured default
// when the request is empty.
func (s *Service) Locale(requested string) model.Locale {
	if requested == "" {
		return s.locale
	}
	return taxonomy.ResolveLocale(model.Locale(requested))
}

// ReplaceCatalog activates c and drops cached briefings, whose
// recommendations came from the previous catalog.
func (s *Service) ReplaceCatalog(ctx context.Context, c *playbook.Catalog) error {
	if c == nil {
		return ErrNoCatalog
	}
	s.catalog.Store(c)
	metrics.SetCatalogSize(c.Len())
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Str(xglog.FieldEvent, "briefing_cache.clear_failed").Msg("could not clear briefing cache after catalog swap")
		return fmt.Errorf("clear briefing cache: %w", err)
	}
	return nil
}

// Close releases the cache and flushes the publisher.
func (s *Service) Close() error {
	return errors.Join(s.publisher.Close(), s.cache.Close())
}
