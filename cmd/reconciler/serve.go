package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"dropship-reconciler/internal/core/server"
	providerhandler "dropship-reconciler/internal/features/provider/handler"
	runhandler "dropship-reconciler/internal/features/reconciliation/handler"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation schedule and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		runHdl := runhandler.NewRunHandler(ctx, env.Scheduler, env.Runs, env.pinger())
		providerHdl := providerhandler.NewProviderHandler(env.Provider, env.Provider, env.Placement)

		srv := server.New(cfg)

		// Register Routes
		srv.App.Get("/health", runHdl.Health)
		srv.App.Get("/runs/last", runHdl.GetLastRun)
		srv.App.Post("/runs", runHdl.TriggerRun)
		srv.App.Get("/provider/balance", providerHdl.GetBalance)
		srv.App.Get("/provider/status", providerHdl.GetStatuses)
		srv.App.Post("/provider/orders", providerHdl.PlaceOrder)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			env.Scheduler.Start(gctx)
			return nil
		})
		g.Go(func() error {
			if err := srv.RunContext(gctx); err != nil {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		})

		// A server failure cancels gctx, which stops the scheduler.
		return g.Wait()
	},
}
