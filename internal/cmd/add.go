package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/config"
)

var addCmd = &cobra.Command{
	Use:   "add <spooldir> [file]",
	Short: "Queue a payload as a new spool element",
	Long: `Add one element to the spool. The payload is read from the given
file, or from standard input when no file is named, and becomes visible
to consumers only once it has been written completely. The new element's
key is printed on standard output.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	input := cmd.InOrStdin()
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("could not open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	s, err := openSpool(args[0], cfg)
	if err != nil {
		return fmt.Errorf("could not open spool: %w", err)
	}
	defer s.Close()

	txn, err := s.Add()
	if err != nil {
		return fmt.Errorf("could not add element: %w", err)
	}

	if _, err := io.Copy(txn.File(), input); err != nil {
		// Never leave a half-written element behind.
		_ = s.Rollback(txn)
		return fmt.Errorf("could not write payload: %w", err)
	}

	if err := s.Commit(txn); err != nil {
		_ = s.Rollback(txn)
		return fmt.Errorf("could not commit element: %w", err)
	}

	logger.WithSpool(s.Path()).WithKey(txn.Key().String()).Info("element added")
	fmt.Fprintln(cmd.OutOrStdout(), txn.Key())
	return nil
}
