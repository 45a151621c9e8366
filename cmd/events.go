package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aonescu/kubelens/internal/events"
	"github.com/aonescu/kubelens/internal/poller"
	"github.com/aonescu/kubelens/internal/state"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream events from the watched namespaces, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.connect()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			aggregator := events.NewAggregator(e.client, e.logger)
			out := cmd.OutOrStdout()
			if once {
				printRows(out, aggregator.Collect(cmd.Context(), e.cfg.Namespaces))
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore := openStore(e.cfg, e.logger)
			defer closeStore()

			return runPipeline(ctx, e, aggregator, poller.NewNamespaces(e.cfg.Namespaces...), store, func(m poller.EventsMessage) {
				printRows(out, m.Rows)
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "collect a single batch and exit")
	return cmd
}

// runPipeline runs the polling loop and drains its channel into store until
// ctx is cancelled.
func runPipeline(ctx context.Context, e *env, collector poller.Collector, ns *poller.Namespaces, store state.EventStore, sink poller.Sink) error {
	ch := make(chan poller.Message, e.cfg.ChannelSize)
	loop := poller.New(collector, ns, ch, e.logger, poller.WithInterval(e.cfg.PollInterval))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(gctx)
		if errors.Is(err, poller.ErrConsumerGone) {
			e.logger.Debug("polling stopped", zap.Error(err))
			return nil
		}
		return err
	})
	g.Go(func() error {
		err := poller.Drain(gctx, ch, store, e.logger, sink)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

func printRows(w io.Writer, rows []string) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, strings.Join(rows, "\n"))
}
