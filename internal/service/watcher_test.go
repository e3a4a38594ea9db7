package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const singlePlaybook = `playbooks:
  - id: dormant_ping
    name: Dormant ping
    trigger:
      field: lifecycle_state
      op: eq
      value: dormant
    steps:
      - action: send_message
        params:
          template: ping
`

func writeCatalog(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestCatalogWatcher_Reload(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	w := NewCatalogWatcher(f.svc, path)
	ctx := context.Background()

	writeCatalog(t, path, singlePlaybook)
	require.NoError(t, w.Reload(ctx))
	assert.Equal(t, []string{"dormant_ping"}, f.svc.Catalog().IDs())

	// An unknown fact keeps the previous catalog active.
	writeCatalog(t, path, `playbooks:
  - id: broken
    name: Broken
    trigger: {field: shoe_size, op: gt, value: 9}
    steps: [{action: send_message}]
`)
	err := w.Reload(ctx)
	require.ErrorIs(t, err, playbook.ErrInvalidCatalog)
	assert.Equal(t, []string{"dormant_ping"}, f.svc.Catalog().IDs())

	require.NoError(t, os.Remove(path))
	assert.Error(t, w.Reload(ctx))
	assert.Equal(t, 1, f.svc.Catalog().Len())
}

func TestCatalogWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeCatalog(t, path, "includeDefaults: true\nplaybooks: []\n")

	w := NewCatalogWatcher(f.svc, path)
	w.debounce = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	writeCatalog(t, path, singlePlaybook)
	assert.Eventually(t, func() bool {
		return f.svc.Catalog().Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	w.Stop()
	// Let a pending debounce timer drain before the leak check.
	time.Sleep(50 * time.Millisecond)
}

func TestCatalogWatcher_StartFailsForMissingDir(t *testing.T) {
	f := newFixture(t)
	w := NewCatalogWatcher(f.svc, filepath.Join(t.TempDir(), "missing", "catalog.yaml"))
	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}
