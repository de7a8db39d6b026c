package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/memory"
)

type capturedSend struct {
	channel shared.ChannelID
	text    string
}

type fakeSender struct {
	sends []capturedSend
	err   error
}

func (s *fakeSender) Send(_ context.Context, channel shared.ChannelID, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sends = append(s.sends, capturedSend{channel: channel, text: text})
	return nil
}

func newTestNotifier(t *testing.T) (*Notifier, *fakeSender, *guildstate.Manager) {
	t.Helper()
	manager, err := guildstate.NewManager(context.Background(), memory.NewStore())
	require.NoError(t, err)
	sender := &fakeSender{}
	return NewNotifier(manager, sender, nil), sender, manager
}

func configureChannels(t *testing.T, manager *guildstate.Manager) {
	t.Helper()
	err := manager.Update(context.Background(), func(state *guildstate.State) error {
		state.Settings.XPLogChannel = "xp-log"
		state.Settings.ApplicationChannel = "applications"
		state.Settings.InfoLogChannel = "info-log"
		return nil
	})
	require.NoError(t, err)
}

func TestNotifier_ChatGrantGoesToXPLog(t *testing.T) {
	notifier, sender, manager := newTestNotifier(t)
	configureChannels(t, manager)

	event := shared.NewChatGrantEvent("evt-1", "member-1", 10, 30, 100, base)
	require.NoError(t, notifier.Handle(event))

	require.Len(t, sender.sends, 1)
	assert.Equal(t, shared.ChannelID("xp-log"), sender.sends[0].channel)
	assert.Contains(t, sender.sends[0].text, "<@member-1>")
	assert.Contains(t, sender.sends[0].text, "10 XP")
}

func TestNotifier_VoiceGrantGoesToXPLog(t *testing.T) {
	notifier, sender, manager := newTestNotifier(t)
	configureChannels(t, manager)

	event := shared.NewVoiceGrantEvent("evt-1", "member-1", 5, 15, 10*time.Minute, base)
	require.NoError(t, notifier.Handle(event))

	require.Len(t, sender.sends, 1)
	assert.Equal(t, shared.ChannelID("xp-log"), sender.sends[0].channel)
	assert.Contains(t, sender.sends[0].text, "10m0s")
}

func TestNotifier_ApplicationRouting(t *testing.T) {
	notifier, sender, manager := newTestNotifier(t)
	configureChannels(t, manager)

	submitted := shared.NewApplicationSubmittedEvent("evt-1", "member-1", "role-veteran", "Veteran", 600, 500, base)
	require.NoError(t, notifier.Handle(submitted))

	decided := shared.NewApplicationDecidedEvent("evt-2", "member-1", "role-veteran", "Veteran", true, "officer-1", base)
	require.NoError(t, notifier.Handle(decided))

	require.Len(t, sender.sends, 2)
	assert.Equal(t, shared.ChannelID("applications"), sender.sends[0].channel)
	assert.Equal(t, shared.ChannelID("info-log"), sender.sends[1].channel)
	assert.Contains(t, sender.sends[1].text, "approved")
	assert.Contains(t, sender.sends[1].text, "<@officer-1>")
}

func TestNotifier_PanicUsesChannelFromEvent(t *testing.T) {
	notifier, sender, _ := newTestNotifier(t)

	event := shared.NewPanicAlertEvent("evt-1", "member-1", "general", "alerts", "role-responders", base)
	require.NoError(t, notifier.Handle(event))

	require.Len(t, sender.sends, 1)
	assert.Equal(t, shared.ChannelID("alerts"), sender.sends[0].channel)
	assert.Contains(t, sender.sends[0].text, "<@&role-responders>")
	assert.Contains(t, sender.sends[0].text, "<#general>")
}

func TestNotifier_UnconfiguredChannelSuppresses(t *testing.T) {
	notifier, sender, _ := newTestNotifier(t)

	event := shared.NewChatGrantEvent("evt-1", "member-1", 10, 30, 100, base)
	require.NoError(t, notifier.Handle(event))

	assert.Empty(t, sender.sends)
}

func TestNotifier_SendFailureIsSwallowed(t *testing.T) {
	notifier, sender, manager := newTestNotifier(t)
	configureChannels(t, manager)
	sender.err = assert.AnError

	event := shared.NewChatGrantEvent("evt-1", "member-1", 10, 30, 100, base)
	assert.NoError(t, notifier.Handle(event))
}
