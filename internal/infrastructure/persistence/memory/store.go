// Package memory implements an in-process snapshot store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
)

// Store keeps the snapshot as serialized bytes so Load always hands back an
// independent copy, matching the isolation of the durable stores.
type Store struct {
	mu   sync.Mutex
	data []byte

	// FailSaves makes Save return this error when set, for exercising
	// persistence-failure paths in tests.
	FailSaves error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Load implements guildstate.SnapshotStore.
func (s *Store) Load(_ context.Context) (*guildstate.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, nil
	}
	var state guildstate.State
	if err := json.Unmarshal(s.data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Save implements guildstate.SnapshotStore.
func (s *Store) Save(_ context.Context, state *guildstate.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves != nil {
		return s.FailSaves
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}
