package poller

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aonescu/kubelens/internal/types"
)

// Message is what the loop publishes to its consumer.
type Message interface {
	isMessage()
}

// EventsMessage carries the formatted event rows of one tick.
type EventsMessage struct {
	Rows        []string
	Namespaces  []string
	CollectedAt time.Time
}

func (EventsMessage) isMessage() {}

// Snapshot converts m for the history store.
func (m EventsMessage) Snapshot() types.EventSnapshot {
	return types.EventSnapshot{
		CollectedAt: m.CollectedAt,
		Namespaces:  m.Namespaces,
		Rows:        m.Rows,
	}
}

// WaitForMessage returns a bubbletea command that blocks until the next
// message on ch. Re-issue it from Update after each message; it yields nil
// once ch is closed.
func WaitForMessage(ch <-chan Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
