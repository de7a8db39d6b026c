package command

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/internal/domain/voice"
)

// ══════════════════════════════════════════════════════════════════════════════
// TICK VOICE COMMAND
// The periodic sweep over all live voice sessions. Each session either pays
// out an elapsed unmuted interval, forfeits it for prolonged mute, or waits.
// ══════════════════════════════════════════════════════════════════════════════

// TickVoiceCommand triggers one sweep.
type TickVoiceCommand struct {
	// TickedAt is the sweep time applied to every session.
	TickedAt time.Time
}

// Validate validates the command.
func (c TickVoiceCommand) Validate() error {
	if c.TickedAt.IsZero() {
		return shared.NewDomainError("command", "TickVoice", shared.ErrInvalidInput, "ticked_at is required")
	}
	return nil
}

// TickVoiceResult summarizes one sweep.
type TickVoiceResult struct {
	// Sessions is the number of live sessions inspected.
	Sessions int

	// Granted is the number of sessions that paid out.
	Granted int

	// Penalized is the number of sessions that forfeited their interval.
	Penalized int

	// Events contains one VoiceGrantEvent per payout.
	Events []shared.Event
}

// TickVoiceHandler handles the TickVoiceCommand.
type TickVoiceHandler struct {
	manager   *guildstate.Manager
	publisher shared.EventPublisher
	cfg       voice.Config
}

// NewTickVoiceHandler creates a new TickVoiceHandler.
func NewTickVoiceHandler(manager *guildstate.Manager, publisher shared.EventPublisher, cfg voice.Config) *TickVoiceHandler {
	if cfg.GrantInterval == 0 {
		cfg = voice.DefaultConfig()
	}
	return &TickVoiceHandler{manager: manager, publisher: publisher, cfg: cfg}
}

// Handle executes one sweep over all sessions. Members are visited in a
// stable order so audit entries from the same tick are deterministic.
func (h *TickVoiceHandler) Handle(ctx context.Context, cmd TickVoiceCommand) (*TickVoiceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &TickVoiceResult{Events: make([]shared.Event, 0)}

	err := h.manager.Update(ctx, func(state *guildstate.State) error {
		result.Sessions = len(state.VoiceSessions)
		if result.Sessions == 0 {
			return guildstate.ErrNoChange
		}

		members := make([]shared.MemberID, 0, len(state.VoiceSessions))
		for memberID := range state.VoiceSessions {
			members = append(members, memberID)
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

		changed := false
		for _, memberID := range members {
			session := state.VoiceSessions[memberID]
			switch session.Tick(cmd.TickedAt, h.cfg) {
			case voice.TickGrant:
				newBalance, _, err := state.Ledger.Grant(memberID, h.cfg.GrantAmount, ledger.ReasonVoiceActivity, cmd.TickedAt)
				if err != nil {
					return err
				}
				result.Granted++
				changed = true
				result.Events = append(result.Events, shared.NewVoiceGrantEvent(
					uuid.NewString(), memberID, h.cfg.GrantAmount, newBalance,
					session.Duration(cmd.TickedAt), cmd.TickedAt,
				))
			case voice.TickMutePenalty:
				result.Penalized++
				changed = true
			}
		}

		if !changed {
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
