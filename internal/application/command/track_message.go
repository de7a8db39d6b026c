// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/guildhub/guild-progression-bot/internal/domain/chat"
	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRACK MESSAGE COMMAND
// Feeds one chat message through the activity filter. Every hundredth counted
// message pays out chat XP through the ledger.
// ══════════════════════════════════════════════════════════════════════════════

// TrackMessageCommand contains one observed chat message.
type TrackMessageCommand struct {
	// MemberID is the author of the message.
	MemberID shared.MemberID

	// Content is the raw message text.
	Content string

	// IsBot marks automated authors, which are never tracked.
	IsBot bool

	// HasEligibleRole reports whether the author holds the tracked role.
	// The gateway resolves role membership before dispatching.
	HasEligibleRole bool

	// ObservedAt is when the message arrived.
	ObservedAt time.Time
}

// Validate validates the command.
func (c TrackMessageCommand) Validate() error {
	if !c.MemberID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	if c.ObservedAt.IsZero() {
		return shared.NewDomainError("command", "TrackMessage", shared.ErrInvalidInput, "observed_at is required")
	}
	return nil
}

// TrackMessageResult reports what happened to the message.
type TrackMessageResult struct {
	// Tracked is false for bots and members without the tracked role.
	Tracked bool

	// Accepted is true when the message passed the filter and was counted.
	Accepted bool

	// Reason explains a rejection.
	Reason chat.RejectReason

	// MessageCount is the member's counter after this message.
	MessageCount int

	// Granted is true when this message completed a batch and paid out.
	Granted bool

	// NewBalance is the balance after a payout (zero value otherwise).
	NewBalance shared.XP

	// Events contains notification events generated by the payout.
	Events []shared.Event
}

// TrackMessageHandler handles the TrackMessageCommand.
type TrackMessageHandler struct {
	manager   *guildstate.Manager
	publisher shared.EventPublisher
	cfg       chat.Config
}

// NewTrackMessageHandler creates a new TrackMessageHandler.
func NewTrackMessageHandler(manager *guildstate.Manager, publisher shared.EventPublisher, cfg chat.Config) *TrackMessageHandler {
	if cfg.BatchSize == 0 {
		cfg = chat.DefaultConfig()
	}
	return &TrackMessageHandler{manager: manager, publisher: publisher, cfg: cfg}
}

// Handle executes the track message command.
func (h *TrackMessageHandler) Handle(ctx context.Context, cmd TrackMessageCommand) (*TrackMessageResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &TrackMessageResult{Events: make([]shared.Event, 0, 1)}

	if cmd.IsBot || !cmd.HasEligibleRole {
		return result, nil
	}
	result.Tracked = true

	err := h.manager.Update(ctx, func(state *guildstate.State) error {
		memberState, known := state.ChatStates[cmd.MemberID]
		if !known {
			memberState = chat.NewState(cmd.MemberID)
		}

		obs := memberState.Observe(cmd.Content, cmd.ObservedAt, h.cfg)
		result.Accepted = obs.Accepted
		result.Reason = obs.Reason
		result.MessageCount = obs.MessageCount

		if !obs.Accepted {
			return guildstate.ErrNoChange
		}
		state.ChatStates[cmd.MemberID] = memberState

		if !obs.BatchCompleted {
			return nil
		}

		newBalance, _, err := state.Ledger.Grant(cmd.MemberID, h.cfg.GrantAmount, ledger.ReasonChatActivity, cmd.ObservedAt)
		if err != nil {
			return err
		}

		result.Granted = true
		result.NewBalance = newBalance
		result.Events = append(result.Events, shared.NewChatGrantEvent(
			uuid.NewString(), cmd.MemberID, h.cfg.GrantAmount, newBalance, obs.MessageCount, cmd.ObservedAt,
		))
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
