// Package memory provides an in-memory sync state store, used by tests
// and by one-off runs that should not leave state behind.
package memory

import (
	"context"
	"sync"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu     sync.RWMutex
	states map[domain.EntityKind]domain.SyncState
}

// NewSyncStateStore creates a new in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{
		states: make(map[domain.EntityKind]domain.SyncState),
	}
}

// Save stores or updates sync state.
func (s *SyncStateStore) Save(_ context.Context, state domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.Kind] = state
	return nil
}

// Get retrieves sync state for a kind.
func (s *SyncStateStore) Get(_ context.Context, kind domain.EntityKind) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[kind]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// Delete removes sync state for a kind.
func (s *SyncStateStore) Delete(_ context.Context, kind domain.EntityKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, kind)
	return nil
}
