package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rijks-verifier/internal/report"
)

func newRunCmd(load loadFunc) *cobra.Command {
	var (
		checks []string
		output string
		record bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run contract checks and print a report",
		Long: `Runs the selected checks, or all of them, and prints a report.

Exits non-zero when any check failed or was inconclusive.

Examples:
  rijks-verifier run
  rijks-verifier run --check pagination --check page-size
  rijks-verifier run --output json --record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, record)
			if err != nil {
				return err
			}
			defer a.Close()

			return runChecks(ctx, a, cmd, checks, output)
		},
	}

	cmd.Flags().StringSliceVar(&checks, "check", nil, "Check to run, repeatable (default: all)")
	cmd.Flags().StringVarP(&output, "output", "o", report.FormatText, "Output format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().BoolVar(&record, "record", false, "Store the run in the database")
	return cmd
}

func runChecks(ctx context.Context, a *app, cmd *cobra.Command, checks []string, output string) error {
	r, err := a.svc.Run(ctx, checks)
	if r == nil {
		return err
	}
	if err != nil {
		log.WithError(err).Error("run completed but was not recorded")
	}

	if err := report.Render(cmd.OutOrStdout(), r, output); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if r.Failed() {
		return errChecksFailed
	}
	return nil
}
