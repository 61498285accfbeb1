package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/config"
	"github.com/spoolio/spoolio/internal/spool"
)

var statusCmd = &cobra.Command{
	Use:   "status <spooldir> <key>",
	Short: "Report which state an element is in",
	Long: `Look up an element by key and print the state it is currently
visible in: new, wip, cur or tmp. Exits with an error if no state
directory contains the element.`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	key, err := spool.KeyFromString(args[1])
	if err != nil {
		return err
	}

	s, err := openSpool(args[0], cfg)
	if err != nil {
		return fmt.Errorf("could not open spool: %w", err)
	}
	defer s.Close()

	status, err := s.Lookup(key)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}
