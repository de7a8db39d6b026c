package guildstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/roleapp"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// stubStore records calls so tests can observe the save discipline.
type stubStore struct {
	state     *State
	loadErr   error
	saveErr   error
	saveCount int
}

func (s *stubStore) Load(_ context.Context) (*State, error) {
	return s.state, s.loadErr
}

func (s *stubStore) Save(_ context.Context, state *State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saveCount++
	s.state = state
	return nil
}

func TestNewManager_BootstrapsDefaultState(t *testing.T) {
	store := &stubStore{}

	m, err := NewManager(context.Background(), store)
	require.NoError(t, err)

	err = m.View(func(state *State) error {
		assert.NotNil(t, state.Ledger.Balances)
		assert.NotNil(t, state.ChatStates)
		assert.NotNil(t, state.VoiceSessions)
		assert.NotNil(t, state.Applications)
		assert.NotNil(t, state.Settings.Requirements)
		return nil
	})
	require.NoError(t, err)
}

func TestNewManager_NormalizesLoadedState(t *testing.T) {
	store := &stubStore{state: &State{}}

	m, err := NewManager(context.Background(), store)
	require.NoError(t, err)

	err = m.View(func(state *State) error {
		assert.NotNil(t, state.ChatStates)
		assert.NotNil(t, state.Settings.Requirements)
		return nil
	})
	require.NoError(t, err)
}

func TestNewManager_LoadFailure(t *testing.T) {
	store := &stubStore{loadErr: errors.New("disk gone")}

	_, err := NewManager(context.Background(), store)

	assert.ErrorIs(t, err, shared.ErrPersistence)
}

func TestUpdate_SavesAfterMutation(t *testing.T) {
	store := &stubStore{}
	m, err := NewManager(context.Background(), store)
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	err = m.Update(context.Background(), func(state *State) error {
		_, _, err := state.Ledger.Grant("member-1", 10, ledger.ReasonChatActivity, now)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.saveCount)
	assert.Equal(t, shared.XP(10), store.state.Ledger.Balance("member-1"))
}

func TestUpdate_NoChangeSkipsSave(t *testing.T) {
	store := &stubStore{}
	m, err := NewManager(context.Background(), store)
	require.NoError(t, err)

	err = m.Update(context.Background(), func(state *State) error {
		return ErrNoChange
	})
	require.NoError(t, err)

	assert.Equal(t, 0, store.saveCount)
}

func TestUpdate_CallbackErrorSkipsSave(t *testing.T) {
	store := &stubStore{}
	m, err := NewManager(context.Background(), store)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.Update(context.Background(), func(state *State) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.saveCount)
}

func TestUpdate_SaveFailureKeepsMutation(t *testing.T) {
	store := &stubStore{}
	m, err := NewManager(context.Background(), store)
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.saveErr = errors.New("disk full")
	err = m.Update(context.Background(), func(state *State) error {
		_, _, err := state.Ledger.Grant("member-1", 10, ledger.ReasonChatActivity, now)
		return err
	})
	assert.ErrorIs(t, err, shared.ErrPersistence)

	// The mutation survived in memory and the next save carries it.
	store.saveErr = nil
	err = m.Update(context.Background(), func(state *State) error {
		_, _, err := state.Ledger.Grant("member-1", 5, ledger.ReasonVoiceActivity, now.Add(time.Minute))
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, shared.XP(15), store.state.Ledger.Balance("member-1"))
}

func TestRequirementFor_CaseInsensitive(t *testing.T) {
	state := DefaultState()
	state.Settings.Requirements["veteran"] = roleapp.Requirement{RoleID: "role-1", RoleName: "Veteran", ThresholdXP: 500}

	req, ok := state.RequirementFor("  VETERAN ")

	require.True(t, ok)
	assert.Equal(t, shared.RoleID("role-1"), req.RoleID)

	_, ok = state.RequirementFor("elder")
	assert.False(t, ok)
}
