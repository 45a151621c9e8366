package poller

import (
	"context"

	"go.uber.org/zap"

	"github.com/aonescu/kubelens/internal/state"
)

// Sink receives every message after it has been recorded.
type Sink func(EventsMessage)

// Drain consumes ch until ctx is cancelled or ch is closed, recording each
// EventsMessage in store and passing it to sink when sink is non-nil. A failed
// Record is logged and does not stop the drain.
func Drain(ctx context.Context, ch <-chan Message, store state.EventStore, logger *zap.Logger, sink Sink) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			events, ok := msg.(EventsMessage)
			if !ok {
				continue
			}
			if err := store.Record(events.Snapshot()); err != nil {
				logger.Warn("failed to record events snapshot", zap.Error(err))
			}
			if sink != nil {
				sink(events)
			}
		}
	}
}
