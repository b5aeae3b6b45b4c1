package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chrond.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Scheduler.TickIntervalSeconds)
	assert.Equal(t, 100, cfg.Scheduler.DueBatchLimit)
	assert.False(t, cfg.Mail.Enabled)
	assert.Equal(t, 25, cfg.Mail.Port)
	assert.Equal(t, "[chrond] ", cfg.Mail.SubjectPrefix)
}

func TestLoadIsCached(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestEnvOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("CHROND_DATABASE_PATH", "/tmp/override.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chrond.toml")
	content := `
[database]
path = "/var/lib/chrond/jobs.db"

[scheduler]
tick_interval_seconds = 5

[mail]
enabled = true
host = "smtp.example.com"
port = 587
from = "scheduler@example.com"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/chrond/jobs.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Scheduler.TickIntervalSeconds)
	assert.True(t, cfg.Mail.Enabled)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	// Unset keys keep defaults.
	assert.Equal(t, 100, cfg.Scheduler.DueBatchLimit)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFromFile("/no/such/chrond.toml")
	assert.Error(t, err)
}
