package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/config"
	"github.com/spoolio/spoolio/internal/spool"
)

var watchCmd = &cobra.Command{
	Use:   "watch <spooldir>",
	Short: "Stream element state changes",
	Long: `Watch the spool for element arrivals and print one line per change
in the form "<key> <state>". Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	cancel, err := s.Watch(func(ev spool.Event) {
		fmt.Fprintf(out, "%s %s\n", ev.Key, ev.Status)
	})
	if err != nil {
		return fmt.Errorf("could not watch spool: %w", err)
	}
	defer cancel()

	logger.WithSpool(s.Path()).Info("watching spool")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	return nil
}
