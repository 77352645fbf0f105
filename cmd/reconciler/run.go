package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"dropship-reconciler/internal/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Runner.Run(ctx)
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return fmt.Errorf("reconciliation run: %w", err)
		}

		logger.Get().Info("Run finished", zap.String("run_id", report.ID), zap.Bool("finalized", report.Finalized))
		return nil
	},
}
