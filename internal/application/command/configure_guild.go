package command

import (
	"context"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/roleapp"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURE GUILD COMMAND
// High-rank members wire channels and roles, and manage the XP-gated role
// requirements. Each command applies one change so admin feedback is precise.
// ══════════════════════════════════════════════════════════════════════════════

// Setting names accepted by ConfigureGuildCommand.
const (
	SettingPanicChannel       = "panic_channel"
	SettingPanicRole          = "panic_role"
	SettingXPLogChannel       = "xp_log_channel"
	SettingApplicationChannel = "application_channel"
	SettingInfoLogChannel     = "information_log_channel"
	SettingPoliceRole         = "police_role"
	SettingHighRankRole       = "highrank_role"
	SettingEligibleRole       = "eligible_role"
)

// ConfigureGuildCommand sets one channel or role wiring value.
type ConfigureGuildCommand struct {
	// ActorID is the member applying the change.
	ActorID shared.MemberID

	// ActorIsHighRank reports whether the actor holds the high-rank role.
	ActorIsHighRank bool

	// Setting names which value to change (one of the Setting constants).
	Setting string

	// Value is the channel or role ID to assign.
	Value string
}

// Validate validates the command.
func (c ConfigureGuildCommand) Validate() error {
	if !c.ActorID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	switch c.Setting {
	case SettingPanicChannel, SettingPanicRole, SettingXPLogChannel,
		SettingApplicationChannel, SettingInfoLogChannel,
		SettingPoliceRole, SettingHighRankRole, SettingEligibleRole:
	default:
		return shared.NewDomainError("command", "ConfigureGuild", shared.ErrInvalidInput, "unknown setting: "+c.Setting)
	}
	if c.Value == "" {
		return shared.NewDomainError("command", "ConfigureGuild", shared.ErrEmptyValue, "value is required")
	}
	return nil
}

// ConfigureGuildHandler handles the ConfigureGuildCommand.
type ConfigureGuildHandler struct {
	manager *guildstate.Manager
}

// NewConfigureGuildHandler creates a new ConfigureGuildHandler.
func NewConfigureGuildHandler(manager *guildstate.Manager) *ConfigureGuildHandler {
	return &ConfigureGuildHandler{manager: manager}
}

// Handle executes the configure guild command.
func (h *ConfigureGuildHandler) Handle(ctx context.Context, cmd ConfigureGuildCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !cmd.ActorIsHighRank {
		return shared.ErrNotHighRank
	}

	return h.manager.Update(ctx, func(state *guildstate.State) error {
		switch cmd.Setting {
		case SettingPanicChannel:
			state.Settings.PanicChannel = shared.ChannelID(cmd.Value)
		case SettingPanicRole:
			state.Settings.PanicRole = shared.RoleID(cmd.Value)
		case SettingXPLogChannel:
			state.Settings.XPLogChannel = shared.ChannelID(cmd.Value)
		case SettingApplicationChannel:
			state.Settings.ApplicationChannel = shared.ChannelID(cmd.Value)
		case SettingInfoLogChannel:
			state.Settings.InfoLogChannel = shared.ChannelID(cmd.Value)
		case SettingPoliceRole:
			state.Settings.PoliceRole = shared.RoleID(cmd.Value)
		case SettingHighRankRole:
			state.Settings.HighRankRole = shared.RoleID(cmd.Value)
		case SettingEligibleRole:
			state.Settings.EligibleRole = shared.RoleID(cmd.Value)
		}
		return nil
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SET ROLE REQUIREMENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// SetRoleRequirementCommand creates or replaces an XP gate for a role.
type SetRoleRequirementCommand struct {
	// ActorID is the member applying the change.
	ActorID shared.MemberID

	// ActorIsHighRank reports whether the actor holds the high-rank role.
	ActorIsHighRank bool

	// RoleID is the platform role to gate.
	RoleID shared.RoleID

	// RoleName is the display name members apply with.
	RoleName string

	// ThresholdXP is the balance required to apply.
	ThresholdXP shared.XP
}

// Validate validates the command.
func (c SetRoleRequirementCommand) Validate() error {
	if !c.ActorID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	if !c.RoleID.IsValid() {
		return shared.NewDomainError("command", "SetRoleRequirement", shared.ErrEmptyValue, "role ID is required")
	}
	if roleapp.NormalizeRoleName(c.RoleName) == "" {
		return shared.NewDomainError("command", "SetRoleRequirement", shared.ErrEmptyValue, "role name is required")
	}
	if c.ThresholdXP < 0 {
		return shared.NewDomainError("command", "SetRoleRequirement", shared.ErrNotPositive, "threshold cannot be negative")
	}
	return nil
}

// SetRoleRequirementHandler handles the SetRoleRequirementCommand.
type SetRoleRequirementHandler struct {
	manager *guildstate.Manager
}

// NewSetRoleRequirementHandler creates a new SetRoleRequirementHandler.
func NewSetRoleRequirementHandler(manager *guildstate.Manager) *SetRoleRequirementHandler {
	return &SetRoleRequirementHandler{manager: manager}
}

// Handle executes the set role requirement command.
func (h *SetRoleRequirementHandler) Handle(ctx context.Context, cmd SetRoleRequirementCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !cmd.ActorIsHighRank {
		return shared.ErrNotHighRank
	}

	return h.manager.Update(ctx, func(state *guildstate.State) error {
		state.Settings.Requirements[roleapp.NormalizeRoleName(cmd.RoleName)] = roleapp.Requirement{
			RoleID:      cmd.RoleID,
			RoleName:    cmd.RoleName,
			ThresholdXP: cmd.ThresholdXP,
		}
		return nil
	})
}

// RemoveRoleRequirementCommand deletes the XP gate for a role name.
type RemoveRoleRequirementCommand struct {
	ActorID         shared.MemberID
	ActorIsHighRank bool
	RoleName        string
}

// Validate validates the command.
func (c RemoveRoleRequirementCommand) Validate() error {
	if !c.ActorID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	if roleapp.NormalizeRoleName(c.RoleName) == "" {
		return shared.NewDomainError("command", "RemoveRoleRequirement", shared.ErrEmptyValue, "role name is required")
	}
	return nil
}

// RemoveRoleRequirementHandler handles the RemoveRoleRequirementCommand.
type RemoveRoleRequirementHandler struct {
	manager *guildstate.Manager
}

// NewRemoveRoleRequirementHandler creates a new RemoveRoleRequirementHandler.
func NewRemoveRoleRequirementHandler(manager *guildstate.Manager) *RemoveRoleRequirementHandler {
	return &RemoveRoleRequirementHandler{manager: manager}
}

// Handle executes the remove role requirement command.
func (h *RemoveRoleRequirementHandler) Handle(ctx context.Context, cmd RemoveRoleRequirementCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !cmd.ActorIsHighRank {
		return shared.ErrNotHighRank
	}

	return h.manager.Update(ctx, func(state *guildstate.State) error {
		key := roleapp.NormalizeRoleName(cmd.RoleName)
		if _, ok := state.Settings.Requirements[key]; !ok {
			return shared.ErrUnknownRole
		}
		delete(state.Settings.Requirements, key)
		return nil
	})
}
