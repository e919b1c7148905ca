// Package config loads gitpkg settings from a TOML file with environment
// overrides.
//
// Settings are resolved in order: built-in defaults, the config file
// (missing file is fine), then GITPKG_* environment variables:
//
//	packages_dir     = "/home/me/.local/share/gitpkg/packages"  # GITPKG_PACKAGES_DIR
//	builtin_prefix   = "com.unity."                              # GITPKG_BUILTIN_PREFIX
//	manifest_name    = "package.json"                            # GITPKG_MANIFEST_NAME
//	settle_ticks     = 10                                        # GITPKG_SETTLE_TICKS
//	tick_interval    = "50ms"                                    # GITPKG_TICK_INTERVAL
//	max_add_attempts = 3                                         # GITPKG_MAX_ADD_ATTEMPTS
//	clone_depth      = 1                                         # GITPKG_CLONE_DEPTH
//	clone_attempts   = 2                                         # GITPKG_CLONE_ATTEMPTS
//	metrics_addr     = ""                                        # GITPKG_METRICS_ADDR
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/gitpkg/pkg/errors"
)

const (
	appName  = "gitpkg"
	fileName = "config.toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "GITPKG"
)

// Config holds gitpkg settings.
type Config struct {
	PackagesDir    string        `toml:"packages_dir" envconfig:"PACKAGES_DIR"`
	BuiltinPrefix  string        `toml:"builtin_prefix" envconfig:"BUILTIN_PREFIX"`
	ManifestName   string        `toml:"manifest_name" envconfig:"MANIFEST_NAME"`
	SettleTicks    int           `toml:"settle_ticks" envconfig:"SETTLE_TICKS"`
	TickInterval   time.Duration `toml:"tick_interval" envconfig:"TICK_INTERVAL"`
	MaxAddAttempts int           `toml:"max_add_attempts" envconfig:"MAX_ADD_ATTEMPTS"`
	CloneDepth     int           `toml:"clone_depth" envconfig:"CLONE_DEPTH"`
	CloneAttempts  int           `toml:"clone_attempts" envconfig:"CLONE_ATTEMPTS"`
	MetricsAddr    string        `toml:"metrics_addr" envconfig:"METRICS_ADDR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PackagesDir:    defaultPackagesDir(),
		BuiltinPrefix:  "com.unity.",
		ManifestName:   "package.json",
		SettleTicks:    10,
		TickInterval:   50 * time.Millisecond,
		MaxAddAttempts: 3,
		CloneDepth:     1,
		CloneAttempts:  2,
	}
}

// Load reads the config file at path and applies environment overrides.
// An empty path uses DefaultPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read config %s", path)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s_* environment override", EnvPrefix)
	}

	return cfg, cfg.Validate()
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot create config directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot write config %s", path)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks that settings are usable.
func (c Config) Validate() error {
	if c.PackagesDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "packages_dir cannot be empty")
	}
	if err := errors.ValidateManifestFilename(c.ManifestName); err != nil {
		return err
	}
	if c.SettleTicks < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "settle_ticks must be at least 1")
	}
	if c.TickInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tick_interval must be positive")
	}
	if c.CloneAttempts < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "clone_attempts must be at least 1")
	}
	if c.CloneDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "clone_depth cannot be negative")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/gitpkg/config.toml, falling back to
// ~/.config/gitpkg/config.toml.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot locate home directory")
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

func defaultPackagesDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "packages")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appName, "packages")
	}
	return filepath.Join(os.TempDir(), appName, "packages")
}
