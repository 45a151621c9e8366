package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aonescu/kubelens/cmd/server"
	"github.com/aonescu/kubelens/internal/events"
	"github.com/aonescu/kubelens/internal/poller"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Collect events in the background and serve them over a REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.connect()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore := openStore(e.cfg, e.logger)
			defer closeStore()

			namespaces := poller.NewNamespaces(e.cfg.Namespaces...)
			aggregator := events.NewAggregator(e.client, e.logger)
			apiServer := server.NewAPIServer(store, e.client, namespaces, e.logger)

			e.logger.Info("starting kubelens",
				zap.Strings("namespaces", e.cfg.Namespaces),
				zap.Duration("poll_interval", e.cfg.PollInterval),
				zap.String("api_address", e.cfg.APIAddress))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return runPipeline(gctx, e, aggregator, namespaces, store, nil)
			})
			g.Go(func() error {
				if err := apiServer.Serve(gctx, e.cfg.APIAddress); err != nil {
					return fmt.Errorf("API server failed: %w", err)
				}
				return nil
			})
			return g.Wait()
		},
	}
}
