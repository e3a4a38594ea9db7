package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fieldpulse.yaml")

	cfg := Defaults()
	cfg.Engine.Thresholds.DormantAfterDays = 45
	cfg.Cache.Backend = CacheRedis
	cfg.Cache.RedisAddr = "redis:6379"
	cfg.Cache.RedisPassword = "s3cret"
	cfg.Catalog.Path = "/etc/fieldpulse/playbooks.yaml"
	require.NoError(t, NewManager(path).Save(cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret")
	assert.Contains(t, string(raw), "rateWindow: 1m0s")

	loaded, err := NewLoaderWithEnv(path, "", envMap(nil)).Load()
	require.NoError(t, err)

	cfg.Cache.RedisPassword = ""
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestManager_RefusesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldpulse.yaml")
	cfg := Defaults()
	cfg.Log.Level = "loud"
	require.Error(t, NewManager(path).Save(cfg))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
