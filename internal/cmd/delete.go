package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/config"
	"github.com/spoolio/spoolio/internal/spool"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <spooldir> <key>",
	Short: "Remove a queued or finished element",
	Long: `Remove an element by key. Only quiescent elements are deleted:
finished elements in cur and unclaimed elements in new. Elements in tmp
or wip belong to a live producer or consumer and are left alone.`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	if err := s.Delete(key); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
	return nil
}
