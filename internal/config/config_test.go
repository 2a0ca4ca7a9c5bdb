package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  engine: native
  wal_mode: false
  busy_timeout_ms: 250
assets:
  max_image_bytes: 2048
logging:
  level: debug
  format: text
vault:
  path: /notes
  last_vault_path: /old-notes
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "native", cfg.Database.Engine)
	assert.False(t, cfg.Database.WALMode)
	assert.Equal(t, 250, cfg.Database.BusyTimeout)
	assert.Equal(t, int64(2048), cfg.Assets.MaxImageBytes)
	assert.Equal(t, 4, cfg.Assets.Concurrency, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "/notes", cfg.Vault.Path)
	assert.Equal(t, "/old-notes", cfg.Vault.LastPath)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  engine: sql\n")

	t.Setenv(EnvDBEngine, "native")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "text")
	t.Setenv(EnvVault, "/env/vault")
	t.Setenv(EnvMaxAssetBytes, "512")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "native", cfg.Database.Engine)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "/env/vault", cfg.Vault.Path)
	assert.Equal(t, int64(512), cfg.Assets.MaxImageBytes)
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv(EnvMaxAssetBytes, "ten")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxAssetBytes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown engine", func(c *Config) { c.Database.Engine = "postgres" }, "database.engine"},
		{"negative busy timeout", func(c *Config) { c.Database.BusyTimeout = -1 }, "busy_timeout_ms"},
		{"zero image limit", func(c *Config) { c.Assets.MaxImageBytes = 0 }, "max_image_bytes"},
		{"zero concurrency", func(c *Config) { c.Assets.Concurrency = 0 }, "concurrency"},
		{"bad log output", func(c *Config) { c.Logging.Output = "syslog" }, "logging.output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/custom/config.yaml")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config.yaml", path)

	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", "/home/tester")
	path, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".taskdown", "config.yaml"), path)
}

func TestRememberVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, RememberVault(path, "/vault/one"))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/vault/one", cfg.Vault.LastPath)

	// Other settings in the file survive
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\nvault:\n  last_vault_path: /vault/one\n"), 0600))
	require.NoError(t, RememberVault(path, "/vault/two"))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/vault/two", cfg.Vault.LastPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
