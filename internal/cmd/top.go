package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/config"
	"github.com/spoolio/spoolio/internal/tui"
)

var topCmd = &cobra.Command{
	Use:   "top <spooldir>",
	Short: "Live monitor of a spool directory",
	Long: `Show a live view of the spool: element counts per state and the
most recent arrivals, refreshed by filesystem notifications.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	dir, err := spoolDir(args, cfg)
	if err != nil {
		return err
	}

	s, err := openSpool(dir, cfg)
	if err != nil {
		return fmt.Errorf("could not open spool: %w", err)
	}
	defer s.Close()

	return tui.Run(s, cfg.Top.Refresh())
}
