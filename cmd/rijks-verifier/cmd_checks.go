package main

import (
	"github.com/spf13/cobra"

	"rijks-verifier/internal/report"
)

func newChecksCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the available checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			return report.Catalogue(cmd.OutOrStdout(), a.svc.Catalogue())
		},
	}
}
