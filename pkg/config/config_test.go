package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 1000, cfg.Pipeline.BatchSize)
	assert.Equal(t, 80*time.Millisecond, cfg.Session.StatusInterval)
	assert.Equal(t, 60*time.Second, cfg.Session.StallTimeout)
	assert.Equal(t, 300*time.Second, cfg.Session.OpenTimeout)
	assert.Equal(t, 100000, cfg.Session.ReadBudget)
	assert.Equal(t, ":8765", cfg.Monitor.HTTPAddr)
	assert.False(t, cfg.Session.RemapSetupOptions)
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate(), "postgres requires a dsn")
	cfg.Database.DSN = "postgres://localhost/racefeed"
	assert.NoError(t, cfg.Validate())

	cfg = New()
	cfg.Pipeline.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Session.ReadBudget = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "racefeed.yaml")
	content := []byte(`
database:
  driver: sqlite
  path: /tmp/test.db
pipeline:
  batch_size: 500
session:
  retry_attempts: 7
monitor:
  http_addr: ":9900"
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 500, cfg.Pipeline.BatchSize)
	assert.Equal(t, 7, cfg.Session.RetryAttempts)
	assert.Equal(t, ":9900", cfg.Monitor.HTTPAddr)
	// Untouched sections keep their defaults.
	assert.Equal(t, 100000, cfg.Session.ReadBudget)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/racefeed.yaml")
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Pipeline.BatchSize)
}
