package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "stream", cfg.Audit.Sink)
	assert.Equal(t, "127.0.0.1", cfg.Audit.Stream.Host)
	assert.Equal(t, 5170, cfg.Audit.Stream.Port)
	assert.Equal(t, ":5170", cfg.Collector.Addr)
	assert.Equal(t, "memory", cfg.Collector.Store)
	assert.Equal(t, "memory", cfg.Payments.Store)
	assert.Equal(t, 24*time.Hour, cfg.Payments.TTL)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9999"
audit:
  sink: file
  file:
    directory: /var/log/audit
    overwrite: true
payments:
  store: redis
  ttl: 1h
  redis:
    addr: redis:6379
    db: 2
`), 0o644))
	t.Setenv("AUDITTRAIL_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Audit.Sink)
	assert.Equal(t, "/var/log/audit", cfg.Audit.File.Directory)
	assert.True(t, cfg.Audit.File.Overwrite)
	assert.Equal(t, "redis", cfg.Payments.Store)
	assert.Equal(t, time.Hour, cfg.Payments.TTL)
	assert.Equal(t, "redis:6379", cfg.Payments.Redis.Addr)
	assert.Equal(t, 2, cfg.Payments.Redis.DB)

	// Unset sections keep their defaults.
	assert.Equal(t, ":5170", cfg.Collector.Addr)
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))
	t.Setenv("AUDITTRAIL_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingConfigFileFails(t *testing.T) {
	t.Setenv("AUDITTRAIL_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audit:\n  sink: file\n"), 0o644))
	t.Setenv("AUDITTRAIL_CONFIG", path)
	t.Setenv("AUDITTRAIL_SINK", "stream")
	t.Setenv("AUDITTRAIL_STREAM_PORT", "6000")
	t.Setenv("AUDITTRAIL_ADDR", ":7777")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "stream", cfg.Audit.Sink)
	assert.Equal(t, 6000, cfg.Audit.Stream.Port)
	assert.Equal(t, ":7777", cfg.Server.Addr)
}
