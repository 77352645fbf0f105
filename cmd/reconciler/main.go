package main

import (
	"fmt"
	"os"

	"dropship-reconciler/internal/core/config"
	"dropship-reconciler/internal/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg        *config.AppConfig
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Dropship order reconciliation",
	Long:  "Compares in-transit storefront orders with the fulfillment provider and marks fully completed orders as shipped in the ledger and the storefront admin.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		logger.Get().Info("Application starting",
			zap.String("environment", cfg.Environment),
			zap.String("log_level", cfg.LogLevel),
			zap.String("command", cmd.Name()),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing the .env file")
	rootCmd.AddCommand(runCmd, serveCmd)
}

// @title Dropship Reconciler API
// @version 1.0
// @description Status and control surface for the dropship order reconciler.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
