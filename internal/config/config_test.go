package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearprogress/yearprogress/internal/progress"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, progress.DefaultTimezone, cfg.Progress.Timezone)
	assert.Equal(t, 0, cfg.Progress.TargetYear)
	assert.Equal(t, "events.json", cfg.Events.File)
	assert.True(t, cfg.Events.SeedDefaults)
	assert.Equal(t, "* * * * *", cfg.Daemon.Schedule)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)

	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, cfg.Location()).Zone()
	assert.Equal(t, 7*3600, offset)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
progress:
  timezone: UTC
  target_year: 2026
events:
  file: /var/lib/yearprogress/events.yaml
  seed_defaults: false
daemon:
  schedule: "@every 30s"
  log_level: debug
server:
  listen: ":9090"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Progress.Timezone)
	assert.Equal(t, 2026, cfg.Progress.TargetYear)
	assert.Equal(t, "/var/lib/yearprogress/events.yaml", cfg.Events.File)
	assert.False(t, cfg.Events.SeedDefaults)
	assert.Equal(t, "@every 30s", cfg.Daemon.Schedule)
	assert.Equal(t, "debug", cfg.Daemon.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Listen)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("YEARPROGRESS_PROGRESS_TARGET_YEAR", "2030")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 2030, cfg.Progress.TargetYear)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown timezone", "progress:\n  timezone: Europe/Berlin\n", "progress.timezone"},
		{"negative year", "progress:\n  target_year: -1\n", "progress.target_year"},
		{"bad schedule", "daemon:\n  schedule: \"every minute\"\n", "daemon.schedule"},
		{"empty events file", "events:\n  file: \"\"\n", "events.file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, progress.DefaultTimezone, cfg.Progress.Timezone)
	assert.NotNil(t, cfg.Location())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("YP_DATA", "/data")
	cfg := Default()
	cfg.Events.File = "$YP_DATA/events.json"

	cfg.ExpandEnvVars()

	assert.Equal(t, "/data/events.json", cfg.Events.File)
}
