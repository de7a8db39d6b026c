package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

func voiceCmd(channel shared.ChannelID, at time.Time) UpdateVoiceStateCommand {
	return UpdateVoiceStateCommand{
		MemberID:        "member-1",
		Channel:         channel,
		HasEligibleRole: true,
		ObservedAt:      at,
	}
}

func TestUpdateVoiceState_Join(t *testing.T) {
	manager, _ := newTestManager(t)
	publisher := &capturingPublisher{}
	h := NewUpdateVoiceStateHandler(manager, publisher)

	result, err := h.Handle(context.Background(), voiceCmd("voice-general", base))
	require.NoError(t, err)

	assert.True(t, result.Tracked)
	assert.Equal(t, VoiceTransitionJoined, result.Transition)

	require.Len(t, publisher.events, 1)
	started, ok := publisher.events[0].(shared.VoiceSessionStartedEvent)
	require.True(t, ok)
	assert.Equal(t, shared.ChannelID("voice-general"), started.Channel)

	err = manager.View(func(state *guildstate.State) error {
		session, ok := state.VoiceSessions["member-1"]
		require.True(t, ok)
		assert.Equal(t, base, session.JoinedAt)
		assert.Equal(t, base, session.LastGrantAt)
		assert.False(t, session.IsMuted())
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateVoiceState_JoinMutedStartsMuteClock(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewUpdateVoiceStateHandler(manager, &capturingPublisher{})

	cmd := voiceCmd("voice-general", base)
	cmd.SelfDeaf = true
	_, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	err = manager.View(func(state *guildstate.State) error {
		session := state.VoiceSessions["member-1"]
		require.True(t, session.IsMuted())
		assert.Equal(t, base, *session.MutedSince)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateVoiceState_LeaveForfeitsAndEndsSession(t *testing.T) {
	manager, _ := newTestManager(t)
	publisher := &capturingPublisher{}
	h := NewUpdateVoiceStateHandler(manager, publisher)

	_, err := h.Handle(context.Background(), voiceCmd("voice-general", base))
	require.NoError(t, err)

	// Leave after nine minutes: no payout for the partial interval.
	left := base.Add(9 * time.Minute)
	result, err := h.Handle(context.Background(), voiceCmd("", left))
	require.NoError(t, err)

	assert.Equal(t, VoiceTransitionLeft, result.Transition)
	assert.Equal(t, 9*time.Minute, result.SessionDuration)

	require.Len(t, publisher.events, 2)
	ended, ok := publisher.events[1].(shared.VoiceSessionEndedEvent)
	require.True(t, ok)
	assert.Equal(t, 9*time.Minute, ended.Duration)

	err = manager.View(func(state *guildstate.State) error {
		assert.NotContains(t, state.VoiceSessions, shared.MemberID("member-1"))
		assert.Equal(t, shared.XP(0), state.Ledger.Balance("member-1"))
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateVoiceState_MoveKeepsSession(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewUpdateVoiceStateHandler(manager, &capturingPublisher{})

	_, err := h.Handle(context.Background(), voiceCmd("voice-general", base))
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), voiceCmd("voice-gaming", base.Add(time.Minute)))
	require.NoError(t, err)

	assert.Equal(t, VoiceTransitionMoved, result.Transition)

	err = manager.View(func(state *guildstate.State) error {
		session := state.VoiceSessions["member-1"]
		assert.Equal(t, shared.ChannelID("voice-gaming"), session.Channel)
		assert.Equal(t, base, session.JoinedAt)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateVoiceState_MuteAndUnmute(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewUpdateVoiceStateHandler(manager, &capturingPublisher{})

	_, err := h.Handle(context.Background(), voiceCmd("voice-general", base))
	require.NoError(t, err)

	cmd := voiceCmd("voice-general", base.Add(time.Minute))
	cmd.SelfMute = true
	result, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, VoiceTransitionMuted, result.Transition)

	result, err = h.Handle(context.Background(), voiceCmd("voice-general", base.Add(2*time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, VoiceTransitionUnmuted, result.Transition)
}

func TestUpdateVoiceState_NoChangeIsNoop(t *testing.T) {
	manager, store := newTestManager(t)
	h := NewUpdateVoiceStateHandler(manager, &capturingPublisher{})

	_, err := h.Handle(context.Background(), voiceCmd("voice-general", base))
	require.NoError(t, err)

	// Same channel, same mute state: nothing to apply, nothing to save.
	store.FailSaves = assert.AnError
	result, err := h.Handle(context.Background(), voiceCmd("voice-general", base.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, VoiceTransitionNone, result.Transition)
}

func TestUpdateVoiceState_LeaveWhenNotInVoiceIsNoop(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewUpdateVoiceStateHandler(manager, &capturingPublisher{})

	result, err := h.Handle(context.Background(), voiceCmd("", base))
	require.NoError(t, err)

	assert.Equal(t, VoiceTransitionNone, result.Transition)
	assert.Empty(t, result.Events)
}

func TestUpdateVoiceState_BotsNotTracked(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewUpdateVoiceStateHandler(manager, &capturingPublisher{})

	cmd := voiceCmd("voice-general", base)
	cmd.IsBot = true
	result, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.False(t, result.Tracked)
	err = manager.View(func(state *guildstate.State) error {
		assert.Empty(t, state.VoiceSessions)
		return nil
	})
	require.NoError(t, err)
}
