package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/internal/domain/voice"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE VOICE STATE COMMAND
// Applies a raw voice-state change from the gateway: joins, leaves, channel
// moves, and mute/deafen toggles. Payouts happen on the periodic tick, never
// here; leaving voice forfeits whatever partial interval had accrued.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateVoiceStateCommand contains one voice-state change.
type UpdateVoiceStateCommand struct {
	// MemberID is the member whose voice state changed.
	MemberID shared.MemberID

	// Channel is the channel the member is now in; empty means disconnected.
	Channel shared.ChannelID

	// SelfMute and SelfDeaf are the member's own toggles. Either one counts
	// as muted for payout purposes.
	SelfMute bool
	SelfDeaf bool

	// IsBot marks automated members, which are never tracked.
	IsBot bool

	// HasEligibleRole reports whether the member holds the tracked role.
	HasEligibleRole bool

	// ObservedAt is when the change arrived.
	ObservedAt time.Time
}

// Validate validates the command.
func (c UpdateVoiceStateCommand) Validate() error {
	if !c.MemberID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	if c.ObservedAt.IsZero() {
		return shared.NewDomainError("command", "UpdateVoiceState", shared.ErrInvalidInput, "observed_at is required")
	}
	return nil
}

// VoiceTransition describes what the state change amounted to.
type VoiceTransition string

const (
	VoiceTransitionNone    VoiceTransition = "none"
	VoiceTransitionJoined  VoiceTransition = "joined"
	VoiceTransitionLeft    VoiceTransition = "left"
	VoiceTransitionMoved   VoiceTransition = "moved"
	VoiceTransitionMuted   VoiceTransition = "muted"
	VoiceTransitionUnmuted VoiceTransition = "unmuted"
)

// UpdateVoiceStateResult reports the applied transition.
type UpdateVoiceStateResult struct {
	// Tracked is false for bots and members without the tracked role.
	Tracked bool

	// Transition is the lifecycle change that was applied.
	Transition VoiceTransition

	// SessionDuration is how long the ended session lasted (left only).
	SessionDuration time.Duration

	// Events contains session lifecycle events for the presence projection.
	Events []shared.Event
}

// UpdateVoiceStateHandler handles the UpdateVoiceStateCommand.
type UpdateVoiceStateHandler struct {
	manager   *guildstate.Manager
	publisher shared.EventPublisher
}

// NewUpdateVoiceStateHandler creates a new UpdateVoiceStateHandler.
func NewUpdateVoiceStateHandler(manager *guildstate.Manager, publisher shared.EventPublisher) *UpdateVoiceStateHandler {
	return &UpdateVoiceStateHandler{manager: manager, publisher: publisher}
}

// Handle executes the voice state update.
func (h *UpdateVoiceStateHandler) Handle(ctx context.Context, cmd UpdateVoiceStateCommand) (*UpdateVoiceStateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &UpdateVoiceStateResult{Transition: VoiceTransitionNone, Events: make([]shared.Event, 0, 1)}

	if cmd.IsBot || !cmd.HasEligibleRole {
		return result, nil
	}
	result.Tracked = true

	muted := cmd.SelfMute || cmd.SelfDeaf

	err := h.manager.Update(ctx, func(state *guildstate.State) error {
		session, inVoice := state.VoiceSessions[cmd.MemberID]

		switch {
		case !inVoice && cmd.Channel.IsValid():
			// Join. A member joining already muted starts the mute clock
			// immediately.
			session = voice.NewSession(cmd.MemberID, cmd.Channel, cmd.ObservedAt)
			if muted {
				session.SetMuted(true, cmd.ObservedAt)
			}
			state.VoiceSessions[cmd.MemberID] = session
			result.Transition = VoiceTransitionJoined
			result.Events = append(result.Events, shared.NewVoiceSessionStartedEvent(
				uuid.NewString(), cmd.MemberID, cmd.Channel, cmd.ObservedAt,
			))

		case inVoice && !cmd.Channel.IsValid():
			// Leave. The partial interval since the last grant is forfeited.
			result.Transition = VoiceTransitionLeft
			result.SessionDuration = session.Duration(cmd.ObservedAt)
			delete(state.VoiceSessions, cmd.MemberID)
			result.Events = append(result.Events, shared.NewVoiceSessionEndedEvent(
				uuid.NewString(), cmd.MemberID, result.SessionDuration, cmd.ObservedAt,
			))

		case inVoice:
			if session.Channel != cmd.Channel {
				session.MoveTo(cmd.Channel)
				result.Transition = VoiceTransitionMoved
			}
			if muted != session.IsMuted() {
				session.SetMuted(muted, cmd.ObservedAt)
				if muted {
					result.Transition = VoiceTransitionMuted
				} else {
					result.Transition = VoiceTransitionUnmuted
				}
			}
			if result.Transition == VoiceTransitionNone {
				return guildstate.ErrNoChange
			}

		default:
			// Not in voice and still not in voice: nothing to track.
			return guildstate.ErrNoChange
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}

	return result, nil
}
