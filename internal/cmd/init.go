package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/config"
	"github.com/spoolio/spoolio/internal/spool"
)

var initCmd = &cobra.Command{
	Use:   "init <spooldir>",
	Short: "Create a spool directory",
	Long: `Create a spool directory at the given path, including any missing
parent directories and the four state subdirectories (tmp, new, wip, cur).
Running init on an existing spool is harmless; elements already queued
stay where they are.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	dir, err := spoolDir(args, cfg)
	if err != nil {
		return err
	}

	s, err := spool.Create(dir, cfg.Spool.Mode())
	if err != nil {
		return fmt.Errorf("could not create spool: %w", err)
	}
	defer s.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized spool at %s\n", s.Path())
	return nil
}
