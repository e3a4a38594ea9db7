// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package health serves liveness and readiness probes with per-component
// status.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/fieldpulse/internal/log"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) severity() int {
	switch s {
	case StatusDegraded:
		return 1
	case StatusUnhealthy:
		return 2
	}
	return 0
}

// CheckResult is one component's verdict.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Response is the body of both probes. Ready is false only when some
// component is unhealthy.
type Response struct {
	Status    Status                 `json:"status"`
	Ready     bool                   `json:"ready"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs the registered checkers. Register everything before serving.
type Manager struct {
	version  string
	checkers []Checker
	now      func() time.Time
}

func NewManager(version string) *Manager {
	return &Manager{version: version, now: time.Now}
}

func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

// Health is the liveness view. Components are only consulted when verbose,
// and the HTTP probe answers 200 either way.
func (m *Manager) Health(ctx context.Context, verbose bool) Response {
	if !verbose {
		return m.response(nil)
	}
	return m.Ready(ctx)
}

// Ready runs every checker concurrently and folds the results into the
// worst status seen.
func (m *Manager) Ready(ctx context.Context) Response {
	if len(m.checkers) == 0 {
		return m.response(nil)
	}
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(m.checkers))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range m.checkers {
		g.Go(func() error {
			res := c.Check(gctx)
			mu.Lock()
			checks[c.Name()] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return m.response(checks)
}

func (m *Manager) response(checks map[string]CheckResult) Response {
	worst := StatusHealthy
	for _, res := range checks {
		if res.Status.severity() > worst.severity() {
			worst = res.Status
		}
	}
	return Response{
		Status:    worst,
		Ready:     worst != StatusUnhealthy,
		Version:   m.version,
		Timestamp: m.now(),
		Checks:    checks,
	}
}

// ServeHealth answers liveness probes. ?verbose=true includes components.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	resp := m.Health(r.Context(), r.URL.Query().Get("verbose") == "true")
	writeProbe(w, r, "health", http.StatusOK, resp)
}

// ServeReady answers readiness probes with 503 while unready.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.Ready(r.Context())
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	writeProbe(w, r, "readiness", code, resp)
}

func writeProbe(w http.ResponseWriter, r *http.Request, probe string, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(resp)

	logger := log.WithComponentFromContext(r.Context(), probe)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, probe+".encode_error").Msg("probe response not written")
		return
	}
	logger.Debug().
		Str(log.FieldEvent, probe+".checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Msg("probe served")
}
