package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"medtransport/internal/app"
)

var syncCmd = &cobra.Command{
	Use:   "sync-status",
	Short: "Re-derive assignment statuses from their report statuses",
	Long: `Scans live assignments and rewrites any whose status no longer matches
the status derived from their report. Intended for repair after
out-of-band data edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Assignments.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("updated %d assignment(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
