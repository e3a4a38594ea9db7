package health

import (
	"context"
	"fmt"
	"os"
	"time"
)

// PingChecker reports a dependency reachable through ping. A failed ping is
// unhealthy when the dependency is required and degraded otherwise.
type PingChecker struct {
	name     string
	ping     func(context.Context) error
	required bool
	timeout  time.Duration
}

// NewPingChecker wraps ping, bounding each call by timeout.
func NewPingChecker(name string, ping func(context.Context) error, required bool, timeout time.Duration) *PingChecker {
	return &PingChecker{name: name, ping: ping, required: required, timeout: timeout}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.ping(ctx); err != nil {
		status := StatusDegraded
		if c.required {
			status = StatusUnhealthy
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// CatalogChecker requires a non-empty playbook catalog.
type CatalogChecker struct {
	size func() int
}

func NewCatalogChecker(size func() int) *CatalogChecker {
	return &CatalogChecker{size: size}
}

func (c *CatalogChecker) Name() string { return "catalog" }

func (c *CatalogChecker) Check(context.Context) CheckResult {
	n := c.size()
	if n == 0 {
		return CheckResult{Status: StatusUnhealthy, Message: "no playbooks loaded"}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d playbooks", n)}
}

// FileChecker checks that a watched file is still present. The service keeps
// running on its last good copy, so a missing file is degraded.
type FileChecker struct {
	name string
	path string
}

// NewFileChecker creates a checker for file existence
func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{name: name, path: path}
}

func (c *FileChecker) Name() string { return c.name }

func (c *FileChecker) Check(context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	info, err := os.Stat(c.path)
	switch {
	case os.IsNotExist(err):
		return CheckResult{Status: StatusDegraded, Error: "file not found", Message: c.path}
	case err != nil:
		return CheckResult{Status: StatusDegraded, Error: err.Error()}
	case info.IsDir():
		return CheckResult{Status: StatusUnhealthy, Error: "expected file, got directory"}
	case info.Size() == 0:
		return CheckResult{Status: StatusDegraded, Message: "file is empty"}
	}
	return CheckResult{Status: StatusHealthy}
}
