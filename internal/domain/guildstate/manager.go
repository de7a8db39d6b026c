package guildstate

import (
	"context"
	"errors"
	"sync"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ErrNoChange signals from an Update callback that the snapshot was not
// mutated and the save should be skipped. Update swallows it and returns nil.
var ErrNoChange = errors.New("guildstate: no change")

// Manager owns the in-memory snapshot and enforces the single-writer
// read-modify-write discipline: every mutation runs under the lock and is
// followed by a full Save before the next mutation starts.
type Manager struct {
	mu    sync.Mutex
	state *State
	store SnapshotStore
}

// NewManager loads the persisted snapshot, bootstrapping a default one when
// storage is empty.
func NewManager(ctx context.Context, store SnapshotStore) (*Manager, error) {
	state, err := store.Load(ctx)
	if err != nil {
		return nil, shared.WrapError("guildstate", "NewManager", shared.ErrPersistence, "loading snapshot", err)
	}
	if state == nil {
		state = DefaultState()
	}
	state.Normalize()
	return &Manager{state: state, store: store}, nil
}

// Update runs fn against the snapshot under the lock and persists the result.
// If fn returns an error nothing is saved. If the save fails the in-memory
// mutation is kept and the error is surfaced; the next successful Update
// persists the accumulated changes.
func (m *Manager) Update(ctx context.Context, fn func(state *State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := fn(m.state); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	if err := m.store.Save(ctx, m.state); err != nil {
		return shared.WrapError("guildstate", "Update", shared.ErrPersistence, "saving snapshot", err)
	}
	return nil
}

// View runs fn against the snapshot under the lock without persisting.
// fn must not mutate the state.
func (m *Manager) View(fn func(state *State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.state)
}
