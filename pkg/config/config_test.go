package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "json", cfg.Serial)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 9464, cfg.Metrics.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
logging:
  level: DEBUG
  format: json
telemetry:
  enabled: true
  endpoint: otel:4317
metrics:
  enabled: true
  port: 9999
serial: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "otel:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 9999, cfg.Metrics.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "logging:\n  level: INFO\n")
	t.Setenv("OMNICALL_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestLoadInvalidLevelFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "logging:\n  level: SHOUTING\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv(ConfigurationPathEnv, "/etc/omnicall/config.yaml")
	assert.Equal(t, "/etc/omnicall/config.yaml", DefaultPath())
}
