// Package gateway adapts raw chat-platform callbacks to application commands.
// The platform client resolves members and roles; the gateway decides which
// command to dispatch and with what eligibility flags.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/application/command"
	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// MemberInfo is the platform's view of a member at event time.
type MemberInfo struct {
	ID    shared.MemberID
	IsBot bool
	Roles []shared.RoleID
}

// HasRole reports whether the member holds the given role. An empty role ID
// matches everyone, which is how unset gates behave.
func (m MemberInfo) HasRole(role shared.RoleID) bool {
	if !role.IsValid() {
		return true
	}
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Handlers bundles the command handlers the gateway dispatches to.
type Handlers struct {
	TrackMessage      *command.TrackMessageHandler
	UpdateVoiceState  *command.UpdateVoiceStateHandler
	SubmitApplication *command.SubmitApplicationHandler
	DecideApplication *command.DecideApplicationHandler
	TriggerPanic      *command.TriggerPanicHandler
	ConfigureGuild    *command.ConfigureGuildHandler
	SetRequirement    *command.SetRoleRequirementHandler
	RemoveRequirement *command.RemoveRoleRequirementHandler
}

// Gateway routes platform events into the application layer.
type Gateway struct {
	manager  *guildstate.Manager
	handlers Handlers
	logger   *slog.Logger
}

// New creates a Gateway.
func New(manager *guildstate.Manager, handlers Handlers, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{manager: manager, handlers: handlers, logger: logger}
}

// settings returns a copy of the current guild settings.
func (g *Gateway) settings() guildstate.Settings {
	var s guildstate.Settings
	_ = g.manager.View(func(state *guildstate.State) error {
		s = state.Settings
		return nil
	})
	return s
}

// OnMessage handles a chat message event.
func (g *Gateway) OnMessage(ctx context.Context, member MemberInfo, content string, now time.Time) (*command.TrackMessageResult, error) {
	result, err := g.handlers.TrackMessage.Handle(ctx, command.TrackMessageCommand{
		MemberID:        member.ID,
		Content:         content,
		IsBot:           member.IsBot,
		HasEligibleRole: member.HasRole(g.settings().EligibleRole),
		ObservedAt:      now,
	})
	if err != nil {
		g.logger.Error("message tracking failed", "member_id", member.ID, "error", err)
		return nil, err
	}
	if result.Granted {
		g.logger.Info("chat batch paid out",
			"member_id", member.ID,
			"message_count", result.MessageCount,
			"new_balance", result.NewBalance,
		)
	}
	return result, nil
}

// OnVoiceStateChange handles a voice state update. An empty channel means the
// member disconnected from voice.
func (g *Gateway) OnVoiceStateChange(ctx context.Context, member MemberInfo, channel shared.ChannelID, selfMute, selfDeaf bool, now time.Time) (*command.UpdateVoiceStateResult, error) {
	result, err := g.handlers.UpdateVoiceState.Handle(ctx, command.UpdateVoiceStateCommand{
		MemberID:        member.ID,
		Channel:         channel,
		SelfMute:        selfMute,
		SelfDeaf:        selfDeaf,
		IsBot:           member.IsBot,
		HasEligibleRole: member.HasRole(g.settings().EligibleRole),
		ObservedAt:      now,
	})
	if err != nil {
		g.logger.Error("voice state update failed", "member_id", member.ID, "error", err)
		return nil, err
	}
	if result.Transition != command.VoiceTransitionNone {
		g.logger.Debug("voice transition",
			"member_id", member.ID,
			"transition", string(result.Transition),
		)
	}
	return result, nil
}

// OnRoleRequest handles a member applying for an XP-gated role.
func (g *Gateway) OnRoleRequest(ctx context.Context, member MemberInfo, roleName string, now time.Time) (*command.SubmitApplicationResult, error) {
	return g.handlers.SubmitApplication.Handle(ctx, command.SubmitApplicationCommand{
		MemberID:    member.ID,
		RoleName:    roleName,
		RequestedAt: now,
	})
}

// OnDecision handles a high-rank member deciding a pending application.
func (g *Gateway) OnDecision(ctx context.Context, decider MemberInfo, applicantID shared.MemberID, approved bool, now time.Time) (*command.DecideApplicationResult, error) {
	return g.handlers.DecideApplication.Handle(ctx, command.DecideApplicationCommand{
		ApplicantID:       applicantID,
		DeciderID:         decider.ID,
		DeciderIsHighRank: decider.HasRole(g.settings().HighRankRole),
		Approved:          approved,
		DecidedAt:         now,
	})
}

// OnPanic handles a police member raising an alert.
func (g *Gateway) OnPanic(ctx context.Context, member MemberInfo, raisedIn shared.ChannelID, now time.Time) (*command.TriggerPanicResult, error) {
	return g.handlers.TriggerPanic.Handle(ctx, command.TriggerPanicCommand{
		MemberID:       member.ID,
		MemberIsPolice: member.HasRole(g.settings().PoliceRole),
		RaisedIn:       raisedIn,
		RaisedAt:       now,
	})
}

// OnConfigure handles an admin setting a channel or role wiring value.
func (g *Gateway) OnConfigure(ctx context.Context, actor MemberInfo, setting, value string) error {
	return g.handlers.ConfigureGuild.Handle(ctx, command.ConfigureGuildCommand{
		ActorID:         actor.ID,
		ActorIsHighRank: actor.HasRole(g.settings().HighRankRole),
		Setting:         setting,
		Value:           value,
	})
}

// OnSetRequirement handles an admin creating or replacing a role XP gate.
func (g *Gateway) OnSetRequirement(ctx context.Context, actor MemberInfo, roleID shared.RoleID, roleName string, threshold shared.XP) error {
	return g.handlers.SetRequirement.Handle(ctx, command.SetRoleRequirementCommand{
		ActorID:         actor.ID,
		ActorIsHighRank: actor.HasRole(g.settings().HighRankRole),
		RoleID:          roleID,
		RoleName:        roleName,
		ThresholdXP:     threshold,
	})
}

// OnRemoveRequirement handles an admin deleting a role XP gate.
func (g *Gateway) OnRemoveRequirement(ctx context.Context, actor MemberInfo, roleName string) error {
	return g.handlers.RemoveRequirement.Handle(ctx, command.RemoveRoleRequirementCommand{
		ActorID:         actor.ID,
		ActorIsHighRank: actor.HasRole(g.settings().HighRankRole),
		RoleName:        roleName,
	})
}
