package main

import (
	"github.com/spf13/cobra"

	"grc-center/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize the standard frameworks and load sample data",
	Long: "Initializes the SOC 2, NIST CSF, ISO 27001, GDPR and HIPAA frameworks.\n" +
		"Sample risks, controls, vendors and requirements are added only to an empty register.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := database.Migrate(a.db); err != nil {
			return err
		}
		svc, err := a.service(ctx)
		if err != nil {
			return err
		}
		sum, err := svc.Seed(ctx)
		if err != nil {
			return err
		}
		a.log.Info("seed finished",
			"frameworks", len(sum.Frameworks.Created),
			"control_frameworks", len(sum.Controls.Created),
			"risks", sum.Risks,
			"controls", sum.ControlItems,
			"vendors", sum.Vendors,
			"requirements", sum.Requirements)
		return nil
	},
}
