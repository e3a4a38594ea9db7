package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	name   string
	result CheckResult
}

func (c staticChecker) Name() string { return c.name }

func (c staticChecker) Check(context.Context) CheckResult { return c.result }

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name      string
		checks    []Status
		want      Status
		wantReady bool
	}{
		{"no checkers", nil, StatusHealthy, true},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy, true},
		{"degraded stays ready", []Status{StatusHealthy, StatusDegraded}, StatusDegraded, true},
		{"unhealthy wins over degraded", []Status{StatusUnhealthy, StatusDegraded}, StatusUnhealthy, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1")
			for i, s := range tt.checks {
				m.RegisterChecker(staticChecker{name: string(rune('a' + i)), result: CheckResult{Status: s}})
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestManager_HealthIgnoresChecksUnlessVerbose(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(staticChecker{name: "redis", result: CheckResult{Status: StatusUnhealthy}})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Empty(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks, "redis")
}

func TestManager_ServeProbes(t *testing.T) {
	m := NewManager("v1.2.3")
	m.RegisterChecker(staticChecker{name: "catalog", result: CheckResult{Status: StatusUnhealthy}})

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, "v1.2.3", resp.Version)
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("redis", func(context.Context) error { return nil }, true, time.Second)
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	down := func(context.Context) error { return errors.New("connection refused") }
	assert.Equal(t, StatusUnhealthy, NewPingChecker("redis", down, true, 0).Check(context.Background()).Status)

	res := NewPingChecker("kafka", down, false, 0).Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, "connection refused", res.Error)

	slow := NewPingChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, true, 10*time.Millisecond)
	assert.Equal(t, StatusUnhealthy, slow.Check(context.Background()).Status)
}

func TestCatalogChecker(t *testing.T) {
	size := 0
	c := NewCatalogChecker(func() int { return size })
	assert.Equal(t, StatusUnhealthy, c.Check(context.Background()).Status)
	size = 6
	res := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "6 playbooks", res.Message)
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(full, []byte("playbooks: []\n"), 0o600))
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		name string
		path string
		want Status
	}{
		{"unconfigured", "", StatusHealthy},
		{"present", full, StatusHealthy},
		{"empty", empty, StatusDegraded},
		{"missing", filepath.Join(dir, "gone.yaml"), StatusDegraded},
		{"directory", dir, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFileChecker("catalog_file", tt.path).Check(context.Background()).Status)
		})
	}
}

type blockingChecker struct {
	name    string
	started chan<- struct{}
	release <-chan struct{}
}

func (c blockingChecker) Name() string { return c.name }

func (c blockingChecker) Check(context.Context) CheckResult {
	c.started <- struct{}{}
	<-c.release
	return CheckResult{Status: StatusHealthy}
}

func TestManager_ReadyRunsChecksConcurrently(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	m := NewManager("v1")
	m.RegisterChecker(blockingChecker{name: "a", started: started, release: release})
	m.RegisterChecker(blockingChecker{name: "b", started: started, release: release})

	done := make(chan Response, 1)
	go func() { done <- m.Ready(context.Background()) }()

	// Both checks must be in flight before either is released.
	for range 2 {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("checks did not run concurrently")
		}
	}
	close(release)
	resp := <-done
	assert.True(t, resp.Ready)
	assert.Len(t, resp.Checks, 2)
}
