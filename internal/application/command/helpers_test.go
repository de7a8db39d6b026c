package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/memory"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newTestManager(t *testing.T) (*guildstate.Manager, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	manager, err := guildstate.NewManager(context.Background(), store)
	require.NoError(t, err)
	return manager, store
}

func seedBalance(t *testing.T, manager *guildstate.Manager, memberID shared.MemberID, amount shared.XP) {
	t.Helper()
	err := manager.Update(context.Background(), func(state *guildstate.State) error {
		state.Ledger.Balances[memberID] = amount
		return nil
	})
	require.NoError(t, err)
}
