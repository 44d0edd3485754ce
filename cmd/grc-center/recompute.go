package main

import (
	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute framework compliance and vendor risk scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.service(ctx)
		if err != nil {
			return err
		}
		_, err = svc.RecomputeAll(ctx)
		return err
	},
}
