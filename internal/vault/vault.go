package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/KeMezz/taskdown/internal/assets"
)

// Vault layout, relative to the vault root.
const (
	MetaDir    = assets.MetaDir
	ConfigFile = "config.json"
	DBFile     = "data.db"
)

// SupportedVersion is the newest vault format this build writes.
// Vaults with a newer major version are opened read-only.
const SupportedVersion = "1.0.0"

// Themes accepted in Config.Theme.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// ErrNewerVersion reports a vault created by a newer, incompatible release.
var ErrNewerVersion = errors.New("vault version is newer than supported")

// Config is the per-vault settings file, .taskdown/config.json.
type Config struct {
	Version             string `json:"version"`
	Theme               string `json:"theme"`
	DefaultReminderTime string `json:"defaultReminderTime"`
	CreatedAt           string `json:"createdAt"`
}

// DefaultConfig returns the settings written into a new vault.
func DefaultConfig(now time.Time) *Config {
	return &Config{
		Version:             SupportedVersion,
		Theme:               ThemeSystem,
		DefaultReminderTime: "09:00",
		CreatedAt:           now.UTC().Format(time.RFC3339Nano),
	}
}

// Validate checks the theme and reminder time fields.
func (c *Config) Validate() error {
	switch c.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("invalid theme %q", c.Theme)
	}
	if _, err := time.Parse("15:04", c.DefaultReminderTime); err != nil {
		return fmt.Errorf("invalid default reminder time %q: %w", c.DefaultReminderTime, err)
	}
	return nil
}

// MetaPath returns <root>/.taskdown.
func MetaPath(root string) string {
	return filepath.Join(root, MetaDir)
}

// DBPath returns the database file of the vault at root.
func DBPath(root string) string {
	return filepath.Join(root, MetaDir, DBFile)
}

// ConfigPath returns the settings file of the vault at root.
func ConfigPath(root string) string {
	return filepath.Join(root, MetaDir, ConfigFile)
}

// Init creates the .taskdown and assets directories and writes a default
// config.json unless one already exists. Existing content is never touched.
func Init(root string) error {
	if err := os.MkdirAll(assets.Dir(root), 0755); err != nil {
		return fmt.Errorf("creating vault directories: %w", err)
	}

	_, err := os.Stat(ConfigPath(root))
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking vault config: %w", err)
	}
	return SaveConfig(root, DefaultConfig(time.Now()))
}

// IsValid reports whether root holds an initialized vault database.
func IsValid(root string) bool {
	info, err := os.Stat(DBPath(root))
	return err == nil && info.Mode().IsRegular()
}

// LoadConfig reads the vault settings.
func LoadConfig(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading vault config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing vault config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes the vault settings as indented JSON.
func SaveConfig(root string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding vault config: %w", err)
	}
	if err := os.MkdirAll(MetaPath(root), 0755); err != nil {
		return fmt.Errorf("creating vault directories: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing vault config: %w", err)
	}
	return nil
}

// CheckVersion compares the vault format version with SupportedVersion.
// It returns ErrNewerVersion when the vault's major version is newer.
func CheckVersion(cfg *Config) error {
	supported := semver.MustParse(SupportedVersion)

	v, err := semver.NewVersion(cfg.Version)
	if err != nil {
		return fmt.Errorf("invalid vault version %q: %w", cfg.Version, err)
	}
	if v.Major() > supported.Major() {
		return fmt.Errorf("%w: vault %s, supported %s", ErrNewerVersion, v, supported)
	}
	return nil
}
