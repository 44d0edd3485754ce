package main

import (
	"os"

	"github.com/spf13/cobra"

	"grc-center/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "grc-center",
	Short:         "Governance, risk and compliance record keeping.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := logging.Bootstrap(os.Stdout, cmd.Name())
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, recomputeCmd)
}
