// Package poller periodically collects events for the watched namespaces and
// publishes them to a single consumer.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the time between two ticks.
const DefaultInterval = time.Second

// ErrConsumerGone is the only reason Run returns.
var ErrConsumerGone = errors.New("poller: consumer gone")

// Collector produces the formatted event rows for a namespace set. It must
// absorb per-namespace failures itself.
type Collector interface {
	Collect(ctx context.Context, namespaces []string) []string
}

type Loop struct {
	collector  Collector
	namespaces *Namespaces
	out        chan<- Message
	logger     *zap.Logger
	interval   time.Duration
	now        func() time.Time
}

type Option func(*Loop)

func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

func New(collector Collector, namespaces *Namespaces, out chan<- Message, logger *zap.Logger, opts ...Option) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		collector:  collector,
		namespaces: namespaces,
		out:        out,
		logger:     logger,
		interval:   DefaultInterval,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run ticks immediately and then every interval until ctx is cancelled, which
// is how the consumer signals it is gone. It always returns an error wrapping
// ErrConsumerGone.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("polling loop started", zap.Duration("interval", l.interval))

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if err := l.Tick(ctx); err != nil {
			l.logger.Info("polling loop stopped", zap.Error(err))
			return err
		}
		select {
		case <-ctx.Done():
			err := l.gone(ctx)
			l.logger.Info("polling loop stopped", zap.Error(err))
			return err
		case <-ticker.C:
		}
	}
}

// Tick collects once and publishes the result.
func (l *Loop) Tick(ctx context.Context) error {
	namespaces := l.namespaces.Get()
	rows := l.collector.Collect(ctx, namespaces)

	msg := EventsMessage{Rows: rows, Namespaces: namespaces, CollectedAt: l.now()}
	select {
	case l.out <- msg:
		l.logger.Debug("published events",
			zap.Int("rows", len(rows)),
			zap.Strings("namespaces", namespaces))
		return nil
	case <-ctx.Done():
		return l.gone(ctx)
	}
}

func (l *Loop) gone(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrConsumerGone, context.Cause(ctx))
}
