package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spoolio/spoolio/internal/spool"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generate and print one element key",
	Long: `Generate a fresh element key without touching any spool. Keys are
64-character lowercase hex strings derived from an HMAC-SHA256 keystream;
they carry no hostname, PID, or timestamp.`,
	Args: cobra.NoArgs,
	RunE: runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), spool.Generate())
	return nil
}
