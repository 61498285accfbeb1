// Package cmd wires the spoolio command-line front end: cobra subcommands
// over the spool engine, with configuration through viper. The engine
// itself never prints or logs; everything user-visible happens here.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spoolio/spoolio/internal/config"
	"github.com/spoolio/spoolio/internal/errors"
	"github.com/spoolio/spoolio/internal/logging"
	"github.com/spoolio/spoolio/internal/spool"
)

var rootCmd = &cobra.Command{
	Use:   "spoolio",
	Short: "Crash-safe filesystem work queues",
	Long: `Spoolio manages maildir-style spool directories: crash-safe work
queues built out of nothing but directories and atomic renames, shared
safely between any number of producer and consumer processes.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/spoolio/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/spoolio")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SPOOLIO")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SPOOLIO_SPOOL_DIR_MODE for spool.dir_mode
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// spoolDir resolves the spool directory for a command: the positional
// argument when given, otherwise the configured default root.
func spoolDir(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Spool.Root != "" {
		return cfg.Spool.Root, nil
	}
	return "", errors.New("no spool directory given and spool.root is not configured")
}

// openSpool opens (or, when configured, creates) the spool at dir.
func openSpool(dir string, cfg *config.Config) (*spool.Spool, error) {
	if cfg.Spool.CreateMissing {
		return spool.Create(dir, cfg.Spool.Mode())
	}
	return spool.Open(dir)
}

// newLogger builds the debug logger configured for CLI commands.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
}
