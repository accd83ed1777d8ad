package cmd

import (
	"github.com/spf13/cobra"

	"medtransport/internal/app"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "medtransport",
	Short: "Emergency transport dispatch coordination service",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
}

func Execute() error {
	return rootCmd.Execute()
}
