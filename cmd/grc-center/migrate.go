package main

import (
	"github.com/spf13/cobra"

	"grc-center/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := database.Migrate(a.db); err != nil {
			return err
		}
		a.log.Info("migrations applied successfully")
		return nil
	},
}
