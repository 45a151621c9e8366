package state

import (
	"sync"

	"github.com/aonescu/kubelens/internal/types"
)

// DefaultCapacity bounds how many snapshots a MemoryStore keeps.
const DefaultCapacity = 256

type EventStore interface {
	Record(snapshot types.EventSnapshot) error
	Latest() (types.EventSnapshot, bool)
	// History returns up to limit snapshots, newest first. limit <= 0 means all.
	History(limit int) []types.EventSnapshot
}

// In-memory implementation for fallback
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []types.EventSnapshot
	capacity  int
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithCapacity(DefaultCapacity)
}

func NewMemoryStoreWithCapacity(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		snapshots: make([]types.EventSnapshot, 0),
		capacity:  capacity,
	}
}

func (s *MemoryStore) Record(snapshot types.EventSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snapshot)
	if over := len(s.snapshots) - s.capacity; over > 0 {
		s.snapshots = append(s.snapshots[:0:0], s.snapshots[over:]...)
	}
	return nil
}

func (s *MemoryStore) Latest() (types.EventSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return types.EventSnapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

func (s *MemoryStore) History(limit int) []types.EventSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.snapshots)
	if limit <= 0 || limit > n {
		limit = n
	}
	results := make([]types.EventSnapshot, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		results = append(results, s.snapshots[i])
	}
	return results
}
