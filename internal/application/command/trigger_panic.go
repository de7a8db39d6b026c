package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRIGGER PANIC COMMAND
// A police-role member raises an alert. The alert is routed to the configured
// panic channel mentioning the responder role. No state is mutated; the
// command only authorizes and emits the event.
// ══════════════════════════════════════════════════════════════════════════════

// TriggerPanicCommand contains a panic alert request.
type TriggerPanicCommand struct {
	// MemberID is the member raising the alert.
	MemberID shared.MemberID

	// MemberIsPolice reports whether the member holds the police role.
	MemberIsPolice bool

	// RaisedIn is the channel the alert was raised from.
	RaisedIn shared.ChannelID

	// RaisedAt is when the alert was raised.
	RaisedAt time.Time
}

// Validate validates the command.
func (c TriggerPanicCommand) Validate() error {
	if !c.MemberID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	if c.RaisedAt.IsZero() {
		return shared.NewDomainError("command", "TriggerPanic", shared.ErrInvalidInput, "raised_at is required")
	}
	return nil
}

// TriggerPanicResult contains the routed alert targets.
type TriggerPanicResult struct {
	AlertChannel  shared.ChannelID
	ResponderRole shared.RoleID

	// Events contains the alert notification.
	Events []shared.Event
}

// TriggerPanicHandler handles the TriggerPanicCommand.
type TriggerPanicHandler struct {
	manager   *guildstate.Manager
	publisher shared.EventPublisher
}

// NewTriggerPanicHandler creates a new TriggerPanicHandler.
func NewTriggerPanicHandler(manager *guildstate.Manager, publisher shared.EventPublisher) *TriggerPanicHandler {
	return &TriggerPanicHandler{manager: manager, publisher: publisher}
}

// Handle executes the trigger panic command.
func (h *TriggerPanicHandler) Handle(ctx context.Context, cmd TriggerPanicCommand) (*TriggerPanicResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !cmd.MemberIsPolice {
		return nil, shared.NewDomainError("command", "TriggerPanic", shared.ErrPermissionDenied, "member does not hold the police role")
	}

	result := &TriggerPanicResult{Events: make([]shared.Event, 0, 1)}

	err := h.manager.View(func(state *guildstate.State) error {
		if !state.Settings.PanicChannel.IsValid() || !state.Settings.PanicRole.IsValid() {
			return shared.NewDomainError("command", "TriggerPanic", shared.ErrNotFound, "panic channel or responder role not configured")
		}
		result.AlertChannel = state.Settings.PanicChannel
		result.ResponderRole = state.Settings.PanicRole
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := shared.NewPanicAlertEvent(
		uuid.NewString(), cmd.MemberID, cmd.RaisedIn, result.AlertChannel, result.ResponderRole, cmd.RaisedAt,
	)
	result.Events = append(result.Events, event)
	_ = h.publisher.Publish(event)

	return result, nil
}
