// Package events collects the events of several namespaces into one
// chronologically ordered, display-ready list.
package events

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aonescu/kubelens/internal/formatting"
	"github.com/aonescu/kubelens/internal/kube"
	"github.com/aonescu/kubelens/internal/types"
)

// Aggregator fans out one events table request per namespace.
type Aggregator struct {
	client kube.Client
	logger *zap.Logger
	style  lipgloss.Style
	now    func() time.Time
}

type Option func(*Aggregator)

// WithMessageStyle overrides the style of the message line.
func WithMessageStyle(style lipgloss.Style) Option {
	return func(a *Aggregator) { a.style = style }
}

// WithClock sets the reference time for relative "Last Seen" values.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(client kube.Client, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		client: client,
		logger: logger,
		style:  formatting.DimStyle,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Rows fetches every namespace concurrently and returns the merged rows sorted
// by last-seen time, oldest first. A namespace whose fetch fails or whose
// table does not carry the expected columns contributes no rows.
func (a *Aggregator) Rows(ctx context.Context, namespaces []string) []types.EventRow {
	perNamespace := make([][]types.EventRow, len(namespaces))

	var g errgroup.Group
	for i, ns := range namespaces {
		g.Go(func() error {
			rows, err := a.fetchNamespace(ctx, ns)
			if err != nil {
				a.logger.Warn("dropping namespace events",
					zap.String("namespace", ns),
					zap.Error(err))
				return nil
			}
			perNamespace[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	var rows []types.EventRow
	for _, r := range perNamespace {
		rows = append(rows, r...)
	}

	now := a.now()
	keys := make([]time.Time, len(rows))
	for i, row := range rows {
		keys[i] = ParseLastSeen(row.LastSeen, now)
	}
	sort.Stable(byTime{rows: rows, keys: keys})

	return rows
}

// Collect is Rows rendered with formatting.FormatEventRows.
func (a *Aggregator) Collect(ctx context.Context, namespaces []string) []string {
	return formatting.FormatEventRows(a.Rows(ctx, namespaces), a.style)
}

func (a *Aggregator) fetchNamespace(ctx context.Context, namespace string) ([]types.EventRow, error) {
	table, err := kube.FetchTable(ctx, a.client, kube.CorePath(namespace, "events"))
	if err != nil {
		return nil, err
	}
	return rowsFromTable(table, namespace)
}

type byTime struct {
	rows []types.EventRow
	keys []time.Time
}

func (b byTime) Len() int           { return len(b.rows) }
func (b byTime) Less(i, j int) bool { return b.keys[i].Before(b.keys[j]) }
func (b byTime) Swap(i, j int) {
	b.rows[i], b.rows[j] = b.rows[j], b.rows[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
