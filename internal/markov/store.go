package markov

import (
	"context"
	"sync"
)

// #region store-interface

// Count is one persisted transition counter seen from one of its ends:
// Key is the state at the other end.
type Count struct {
	Key       string
	Frequency uint64
}

// TransitionStore persists (chain, from, to) -> frequency counters.
// Increment must be an atomic create-then-add so concurrent writers never
// lose an observation.
type TransitionStore interface {
	Increment(ctx context.Context, chainID int64, from, to string) error
	From(ctx context.Context, chainID int64, from string) ([]Count, error)
	To(ctx context.Context, chainID int64, to string) ([]Count, error)
}

// #endregion store-interface

// #region memory-store

type edge struct {
	chain    int64
	from, to string
}

// MemoryStore is a TransitionStore held in process memory.
// Rows come back in first-seen order.
type MemoryStore struct {
	mu     sync.RWMutex
	counts map[edge]uint64
	order  []edge
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[edge]uint64)}
}

func (m *MemoryStore) Increment(ctx context.Context, chainID int64, from, to string) error {
	return m.IncrementBy(ctx, chainID, from, to, 1)
}

// IncrementBy adds n observations of from -> to.
func (m *MemoryStore) IncrementBy(_ context.Context, chainID int64, from, to string, n uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := edge{chainID, from, to}
	if _, ok := m.counts[e]; !ok {
		m.order = append(m.order, e)
	}
	m.counts[e] += n
	return nil
}

func (m *MemoryStore) From(_ context.Context, chainID int64, from string) ([]Count, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Count
	for _, e := range m.order {
		if e.chain == chainID && e.from == from {
			out = append(out, Count{Key: e.to, Frequency: m.counts[e]})
		}
	}
	return out, nil
}

func (m *MemoryStore) To(_ context.Context, chainID int64, to string) ([]Count, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Count
	for _, e := range m.order {
		if e.chain == chainID && e.to == to {
			out = append(out, Count{Key: e.from, Frequency: m.counts[e]})
		}
	}
	return out, nil
}

// #endregion memory-store
