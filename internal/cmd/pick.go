package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/config"
	"github.com/spoolio/spoolio/internal/errors"
)

var pickRequeue bool

var pickCmd = &cobra.Command{
	Use:   "pick <spooldir>",
	Short: "Claim one element and print its payload",
	Long: `Atomically claim one element from the spool and write its payload
to standard output; the element's key is reported on standard error. The
claim is exclusive: no other consumer, in this process or any other, can
pick the same element.

On success the element is committed (moved to cur). With --requeue it is
returned to the queue instead, for another consumer to claim later. An
empty spool is not an error; pick reports it and exits cleanly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPick,
}

func init() {
	pickCmd.Flags().BoolVar(&pickRequeue, "requeue", false, "return the element to the queue after printing it")
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	dir, err := spoolDir(args, cfg)
	if err != nil {
		return err
	}

	s, err := openSpool(dir, cfg)
	if err != nil {
		return fmt.Errorf("could not open spool: %w", err)
	}
	defer s.Close()

	txn, err := s.Pick()
	if errors.Is(err, errors.ErrSpoolEmpty) {
		fmt.Fprintln(cmd.ErrOrStderr(), "spool is empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not pick element: %w", err)
	}

	key := txn.Key()
	if _, err := io.Copy(cmd.OutOrStdout(), txn.File()); err != nil {
		// The payload did not reach the caller; put the element back.
		_ = s.Rollback(txn)
		return fmt.Errorf("could not read payload of %s: %w", key, err)
	}

	if pickRequeue {
		if err := s.Rollback(txn); err != nil {
			return fmt.Errorf("could not requeue %s: %w", key, err)
		}
		logger.WithSpool(s.Path()).WithKey(key.String()).Info("element requeued")
	} else {
		if err := s.Commit(txn); err != nil {
			return fmt.Errorf("could not commit %s: %w", key, err)
		}
		logger.WithSpool(s.Path()).WithKey(key.String()).Info("element finished")
	}

	fmt.Fprintln(cmd.ErrOrStderr(), key)
	return nil
}
