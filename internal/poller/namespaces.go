package poller

import "sync"

// Namespaces is the watched namespace set, shared between the loop (reader)
// and whatever drives namespace selection (writer).
type Namespaces struct {
	mu    sync.RWMutex
	names []string
}

func NewNamespaces(names ...string) *Namespaces {
	return &Namespaces{names: append([]string(nil), names...)}
}

// Get returns a copy of the current set. The read lock is held only while
// copying.
func (n *Namespaces) Get() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.names...)
}

// Set replaces the current set.
func (n *Namespaces) Set(names []string) {
	next := append([]string(nil), names...)
	n.mu.Lock()
	n.names = next
	n.mu.Unlock()
}
