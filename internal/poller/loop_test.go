package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aonescu/kubelens/internal/events"
	"github.com/aonescu/kubelens/internal/kube/kubetest"
	"github.com/aonescu/kubelens/internal/state"
)

type fakeCollector struct {
	mu    sync.Mutex
	calls [][]string
	rows  func(namespaces []string) []string
}

func (f *fakeCollector) Collect(_ context.Context, namespaces []string) []string {
	f.mu.Lock()
	f.calls = append(f.calls, namespaces)
	f.mu.Unlock()
	if f.rows == nil {
		return nil
	}
	return f.rows(namespaces)
}

func receive(t *testing.T, ch <-chan Message) EventsMessage {
	t.Helper()
	select {
	case msg := <-ch:
		events, ok := msg.(EventsMessage)
		require.True(t, ok)
		return events
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return EventsMessage{}
	}
}

func TestLoopPublishesEveryTick(t *testing.T) {
	collector := &fakeCollector{rows: func(ns []string) []string { return []string{"row in " + ns[0]} }}
	ns := NewNamespaces("default")
	out := make(chan Message)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := New(collector, ns, out, nil, WithInterval(5*time.Millisecond))
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	first := receive(t, out)
	assert.Equal(t, []string{"row in default"}, first.Rows)
	assert.Equal(t, []string{"default"}, first.Namespaces)

	ns.Set([]string{"kube-system"})
	var next EventsMessage
	for i := 0; i < 3; i++ {
		next = receive(t, out)
	}
	assert.Equal(t, []string{"kube-system"}, next.Namespaces)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrConsumerGone))
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

func TestLoopKeepsTickingWhenCollectReturnsNothing(t *testing.T) {
	collector := &fakeCollector{}
	out := make(chan Message, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go New(collector, NewNamespaces("a", "b"), out, nil, WithInterval(time.Millisecond)).Run(ctx)

	for i := 0; i < 3; i++ {
		msg := receive(t, out)
		assert.Empty(t, msg.Rows)
	}
}

func TestLoopKeepsTickingWhenEveryNamespaceFails(t *testing.T) {
	client := kubetest.New().
		Fail("api/v1/namespaces/a/events", errors.New("connection refused")).
		Fail("api/v1/namespaces/b/events", errors.New("forbidden"))
	aggregator := events.NewAggregator(client, nil)
	out := make(chan Message, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go New(aggregator, NewNamespaces("a", "b"), out, nil, WithInterval(time.Millisecond)).Run(ctx)

	for i := 0; i < 3; i++ {
		msg := receive(t, out)
		assert.Empty(t, msg.Rows)
		assert.Equal(t, []string{"a", "b"}, msg.Namespaces)
	}
	assert.GreaterOrEqual(t, len(client.Paths()), 6, "every tick queries every namespace")
}

func TestTickStopsWhenConsumerGone(t *testing.T) {
	collector := &fakeCollector{}
	out := make(chan Message)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(collector, NewNamespaces("default"), out, nil).Tick(ctx)
	assert.True(t, errors.Is(err, ErrConsumerGone))
}

func TestTickUsesClock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	out := make(chan Message, 1)

	err := New(&fakeCollector{}, NewNamespaces(), out, nil, WithClock(func() time.Time { return at })).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at, receive(t, out).CollectedAt)
}

func TestNamespacesGetReturnsCopy(t *testing.T) {
	ns := NewNamespaces("a", "b")
	got := ns.Get()
	got[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, ns.Get())

	input := []string{"c"}
	ns.Set(input)
	input[0] = "mutated"
	assert.Equal(t, []string{"c"}, ns.Get())
}

func TestNamespacesConcurrentAccess(t *testing.T) {
	ns := NewNamespaces("default")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); ns.Set([]string{"x", "y"}) }()
		go func() { defer wg.Done(); _ = ns.Get() }()
	}
	wg.Wait()
	assert.Equal(t, []string{"x", "y"}, ns.Get())
}

func TestDrainRecordsAndForwards(t *testing.T) {
	ch := make(chan Message, 2)
	ch <- EventsMessage{Rows: []string{"r1"}, Namespaces: []string{"default"}}
	ch <- EventsMessage{Rows: []string{"r2"}, Namespaces: []string{"default"}}
	close(ch)

	store := state.NewMemoryStore()
	var seen []string
	err := Drain(context.Background(), ch, store, nil, func(m EventsMessage) { seen = append(seen, m.Rows...) })
	require.NoError(t, err)

	assert.Equal(t, []string{"r1", "r2"}, seen)
	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, []string{"r2"}, latest.Rows)
}

func TestDrainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Drain(ctx, make(chan Message), state.NewMemoryStore(), nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWaitForMessage(t *testing.T) {
	ch := make(chan Message, 1)
	ch <- EventsMessage{Rows: []string{"row"}}

	msg := WaitForMessage(ch)()
	events, ok := msg.(EventsMessage)
	require.True(t, ok)
	assert.Equal(t, []string{"row"}, events.Rows)

	close(ch)
	assert.Nil(t, WaitForMessage(ch)())
}
