package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: postgres://localhost/occupancy\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 300*time.Second, cfg.Registry.Interval)
	assert.Equal(t, 100, cfg.Registry.PageSize)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoad_FileValuesAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  cors_origins: ["https://office.example.com"]
database:
  driver: sqlite
  dsn: file:test.db
registry:
  sync_enabled: true
  base_url: https://registry.example.com
  building_ids: ["b-1", "b-2"]
  interval_seconds: 60
timezone: Europe/Istanbul
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REGISTRY_BASE_URL", "https://registry.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://office.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "https://registry.internal", cfg.Registry.BaseURL)
	assert.Equal(t, []string{"b-1", "b-2"}, cfg.Registry.BuildingIDs)
	assert.Equal(t, time.Minute, cfg.Registry.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "Europe/Istanbul", cfg.Location.String())
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"unknown driver", "database:\n  driver: mysql\n"},
		{"sync without base url", "registry:\n  sync_enabled: true\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
