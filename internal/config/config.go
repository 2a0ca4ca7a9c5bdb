package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognised by Load.
const (
	EnvConfigPath    = "TASKDOWN_CONFIG"
	EnvDBEngine      = "TASKDOWN_DB_ENGINE"
	EnvLogLevel      = "TASKDOWN_LOG_LEVEL"
	EnvLogFormat     = "TASKDOWN_LOG_FORMAT"
	EnvVault         = "TASKDOWN_VAULT"
	EnvMaxAssetBytes = "TASKDOWN_MAX_ASSET_BYTES"
)

// DefaultMaxImageBytes is the upload limit applied when none is configured.
const DefaultMaxImageBytes int64 = 10 * 1024 * 1024

// Config is the root configuration structure for the taskdown server.
// It is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
	Vault    VaultConfig    `yaml:"vault"`
}

// DatabaseConfig contains SQLite connection settings.
type DatabaseConfig struct {
	// Engine is "native" (ncruces low-level API, default) or "sql" (database/sql)
	Engine      string `yaml:"engine"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout_ms"`
}

// AssetsConfig contains image upload settings.
type AssetsConfig struct {
	MaxImageBytes int64 `yaml:"max_image_bytes"`
	// Concurrency bounds parallel writes in a batch upload
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// VaultConfig tracks which vault to open.
type VaultConfig struct {
	// Path is opened at startup when set
	Path string `yaml:"path"`
	// LastPath is the most recently opened vault
	LastPath string `yaml:"last_vault_path"`
}

// DefaultPath returns $TASKDOWN_CONFIG, or ~/.taskdown/config.yaml.
func DefaultPath() (string, error) {
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".taskdown", "config.yaml"), nil
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values
//  2. YAML file values, when the file exists
//  3. Environment variables
//
// A missing file is not an error; the defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Engine:      "native",
			WALMode:     true,
			BusyTimeout: 5000,
		},
		Assets: AssetsConfig{
			MaxImageBytes: DefaultMaxImageBytes,
			Concurrency:   4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies TASKDOWN_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvDBEngine); v != "" {
		cfg.Database.Engine = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvVault); v != "" {
		cfg.Vault.Path = v
	}
	if v := os.Getenv(EnvMaxAssetBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMaxAssetBytes, err)
		}
		cfg.Assets.MaxImageBytes = n
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Database.Engine) {
	case "sql", "native":
	default:
		errs = append(errs, fmt.Sprintf("database.engine must be \"sql\" or \"native\", got %q", c.Database.Engine))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, "database.busy_timeout_ms must not be negative")
	}

	if c.Assets.MaxImageBytes <= 0 {
		errs = append(errs, "assets.max_image_bytes must be positive")
	}
	if c.Assets.Concurrency < 1 {
		errs = append(errs, "assets.concurrency must be at least 1")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "stderr", "stdout", "":
	default:
		errs = append(errs, "logging.output must be stderr or stdout")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Save writes cfg to path as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// RememberVault records vault as the last opened vault in the file at path.
// Environment overrides are not persisted.
func RememberVault(path, vault string) error {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Vault.LastPath = vault
	return Save(path, cfg)
}
