// Package config defines the spoolio configuration, its defaults, and
// validation. Configuration is read through viper from an optional YAML
// file and SPOOLIO_* environment variables; every value has a working
// default so no config file is required.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete spoolio configuration
type Config struct {
	Spool   SpoolConfig   `mapstructure:"spool"`
	Logging LoggingConfig `mapstructure:"logging"`
	Top     TopConfig     `mapstructure:"top"`
}

// SpoolConfig controls how spool directories are opened and created
type SpoolConfig struct {
	// Root is the spool directory used when a command does not name one.
	Root string `mapstructure:"root"`
	// DirMode is the octal permission mode for created spool directories
	// (root and the four state subdirectories).
	DirMode string `mapstructure:"dir_mode"`
	// CreateMissing makes commands create the spool directory tree when
	// it does not exist yet, instead of failing.
	CreateMissing bool `mapstructure:"create_missing"`
}

// LoggingConfig controls the CLI's structured debug log
type LoggingConfig struct {
	// Enabled turns file logging on; when false, commands run silent.
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum level written: debug, info, warn, error.
	Level string `mapstructure:"level"`
	// File is the log destination; empty means stderr.
	File string `mapstructure:"file"`
}

// TopConfig controls the live monitor
type TopConfig struct {
	// RefreshMs is the fallback polling interval in milliseconds, used
	// when filesystem notifications are unavailable or events are missed.
	RefreshMs int `mapstructure:"refresh_ms"`
}

// Refresh returns the monitor's fallback polling interval.
func (c *TopConfig) Refresh() time.Duration {
	return time.Duration(c.RefreshMs) * time.Millisecond
}

// Mode parses DirMode as an octal permission mode. Call Validate first;
// on a malformed mode it falls back to 0755.
func (c *SpoolConfig) Mode() os.FileMode {
	mode, err := strconv.ParseUint(c.DirMode, 8, 32)
	if err != nil {
		return 0o755
	}
	return os.FileMode(mode).Perm()
}

// Default returns a Config populated with default values
func Default() *Config {
	return &Config{
		Spool: SpoolConfig{
			Root:          "",
			DirMode:       "0755",
			CreateMissing: false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
			File:    "",
		},
		Top: TopConfig{
			RefreshMs: 2000,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("spool.root", defaults.Spool.Root)
	viper.SetDefault("spool.dir_mode", defaults.Spool.DirMode)
	viper.SetDefault("spool.create_missing", defaults.Spool.CreateMissing)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("top.refresh_ms", defaults.Top.RefreshMs)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spoolio")
	}
	// Fall back to ~/.config/spoolio
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spoolio"
	}
	return filepath.Join(home, ".config", "spoolio")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
