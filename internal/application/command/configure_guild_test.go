package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

func TestConfigureGuild_SetsEachSetting(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewConfigureGuildHandler(manager)

	settings := map[string]string{
		SettingPanicChannel:       "ch-panic",
		SettingPanicRole:          "role-panic",
		SettingXPLogChannel:       "ch-xp",
		SettingApplicationChannel: "ch-apps",
		SettingInfoLogChannel:     "ch-info",
		SettingPoliceRole:         "role-police",
		SettingHighRankRole:       "role-officers",
		SettingEligibleRole:       "role-members",
	}
	for setting, value := range settings {
		err := h.Handle(context.Background(), ConfigureGuildCommand{
			ActorID:         "officer-1",
			ActorIsHighRank: true,
			Setting:         setting,
			Value:           value,
		})
		require.NoError(t, err, setting)
	}

	err := manager.View(func(state *guildstate.State) error {
		assert.Equal(t, shared.ChannelID("ch-panic"), state.Settings.PanicChannel)
		assert.Equal(t, shared.RoleID("role-panic"), state.Settings.PanicRole)
		assert.Equal(t, shared.ChannelID("ch-xp"), state.Settings.XPLogChannel)
		assert.Equal(t, shared.ChannelID("ch-apps"), state.Settings.ApplicationChannel)
		assert.Equal(t, shared.ChannelID("ch-info"), state.Settings.InfoLogChannel)
		assert.Equal(t, shared.RoleID("role-police"), state.Settings.PoliceRole)
		assert.Equal(t, shared.RoleID("role-officers"), state.Settings.HighRankRole)
		assert.Equal(t, shared.RoleID("role-members"), state.Settings.EligibleRole)
		return nil
	})
	require.NoError(t, err)
}

func TestConfigureGuild_RequiresHighRank(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewConfigureGuildHandler(manager)

	err := h.Handle(context.Background(), ConfigureGuildCommand{
		ActorID: "member-1",
		Setting: SettingPanicChannel,
		Value:   "ch-panic",
	})

	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestConfigureGuild_RejectsUnknownSetting(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewConfigureGuildHandler(manager)

	err := h.Handle(context.Background(), ConfigureGuildCommand{
		ActorID:         "officer-1",
		ActorIsHighRank: true,
		Setting:         "favorite_color",
		Value:           "blue",
	})

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSetRoleRequirement_Upserts(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewSetRoleRequirementHandler(manager)

	err := h.Handle(context.Background(), SetRoleRequirementCommand{
		ActorID:         "officer-1",
		ActorIsHighRank: true,
		RoleID:          "role-veteran",
		RoleName:        "Veteran",
		ThresholdXP:     500,
	})
	require.NoError(t, err)

	// Replacing uses the normalized name as the key.
	err = h.Handle(context.Background(), SetRoleRequirementCommand{
		ActorID:         "officer-1",
		ActorIsHighRank: true,
		RoleID:          "role-veteran",
		RoleName:        "VETERAN",
		ThresholdXP:     750,
	})
	require.NoError(t, err)

	err = manager.View(func(state *guildstate.State) error {
		require.Len(t, state.Settings.Requirements, 1)
		req, ok := state.RequirementFor("veteran")
		require.True(t, ok)
		assert.Equal(t, shared.XP(750), req.ThresholdXP)
		return nil
	})
	require.NoError(t, err)
}

func TestSetRoleRequirement_RequiresHighRank(t *testing.T) {
	manager, _ := newTestManager(t)
	h := NewSetRoleRequirementHandler(manager)

	err := h.Handle(context.Background(), SetRoleRequirementCommand{
		ActorID:     "member-1",
		RoleID:      "role-veteran",
		RoleName:    "Veteran",
		ThresholdXP: 500,
	})

	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestRemoveRoleRequirement(t *testing.T) {
	manager, _ := newTestManager(t)
	set := NewSetRoleRequirementHandler(manager)
	remove := NewRemoveRoleRequirementHandler(manager)

	err := set.Handle(context.Background(), SetRoleRequirementCommand{
		ActorID:         "officer-1",
		ActorIsHighRank: true,
		RoleID:          "role-veteran",
		RoleName:        "Veteran",
		ThresholdXP:     500,
	})
	require.NoError(t, err)

	err = remove.Handle(context.Background(), RemoveRoleRequirementCommand{
		ActorID:         "officer-1",
		ActorIsHighRank: true,
		RoleName:        "veteran",
	})
	require.NoError(t, err)

	err = manager.View(func(state *guildstate.State) error {
		assert.Empty(t, state.Settings.Requirements)
		return nil
	})
	require.NoError(t, err)

	err = remove.Handle(context.Background(), RemoveRoleRequirementCommand{
		ActorID:         "officer-1",
		ActorIsHighRank: true,
		RoleName:        "veteran",
	})
	assert.ErrorIs(t, err, shared.ErrUnknownRole)
}
