package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "host=localhost user=app dbname=smartlocker"
auth:
  jwt_secret: "test-secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 60, cfg.Server.CacheTTLSeconds)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, DefaultTimezone, cfg.Analytics.Timezone)
	assert.Equal(t, "America/Sao_Paulo", cfg.Analytics.Location.String())
	assert.Equal(t, 5*time.Minute, cfg.Watcher.Interval)
	assert.Equal(t, 4*time.Hour, cfg.Watcher.Overdue)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  rate_limit_per_sec: 50
  rate_limit_burst: 20
  cache_ttl_seconds: 5
auth:
  jwt_secret: "test-secret"
  token_ttl_minutes: 15
analytics:
  timezone: "UTC"
watcher:
  enabled: true
  interval_seconds: 30
  overdue_minutes: 90
worker_pool:
  size: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, time.UTC, cfg.Analytics.Location)
	assert.True(t, cfg.Watcher.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Watcher.Interval)
	assert.Equal(t, 90*time.Minute, cfg.Watcher.Overdue)
	assert.Equal(t, 8, cfg.WorkerPool.Size)
}

func TestLoadFallsBackOnBadTimezone(t *testing.T) {
	path := writeConfig(t, `
analytics:
  timezone: "Mars/Olympus_Mons"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// The fallback matches the fixed offset the campus runs on.
	_, offset := time.Now().In(cfg.Analytics.Location).Zone()
	assert.Equal(t, -3*60*60, offset)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
