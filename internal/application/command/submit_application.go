package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/roleapp"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT APPLICATION COMMAND
// A member applies for an XP-gated role. One pending application per member;
// the balance gate is checked at submission time against the configured
// requirement for the named role.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitApplicationCommand contains a role application request.
type SubmitApplicationCommand struct {
	// MemberID is the applicant.
	MemberID shared.MemberID

	// RoleName is the requested role's display name, matched
	// case-insensitively against configured requirements.
	RoleName string

	// RequestedAt is when the application was made.
	RequestedAt time.Time
}

// Validate validates the command.
func (c SubmitApplicationCommand) Validate() error {
	if !c.MemberID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	if roleapp.NormalizeRoleName(c.RoleName) == "" {
		return shared.NewDomainError("command", "SubmitApplication", shared.ErrEmptyValue, "role name is required")
	}
	if c.RequestedAt.IsZero() {
		return shared.NewDomainError("command", "SubmitApplication", shared.ErrInvalidInput, "requested_at is required")
	}
	return nil
}

// SubmitApplicationResult contains the created application.
type SubmitApplicationResult struct {
	Application roleapp.Application

	// Balance and Threshold echo the gate check for the prompt message.
	Balance   shared.XP
	Threshold shared.XP

	// Events contains the submission notification.
	Events []shared.Event
}

// SubmitApplicationHandler handles the SubmitApplicationCommand.
type SubmitApplicationHandler struct {
	manager   *guildstate.Manager
	publisher shared.EventPublisher
}

// NewSubmitApplicationHandler creates a new SubmitApplicationHandler.
func NewSubmitApplicationHandler(manager *guildstate.Manager, publisher shared.EventPublisher) *SubmitApplicationHandler {
	return &SubmitApplicationHandler{manager: manager, publisher: publisher}
}

// Handle executes the submit application command. Checks run in order:
// known role, no pending application, sufficient balance.
func (h *SubmitApplicationHandler) Handle(ctx context.Context, cmd SubmitApplicationCommand) (*SubmitApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &SubmitApplicationResult{Events: make([]shared.Event, 0, 1)}

	err := h.manager.Update(ctx, func(state *guildstate.State) error {
		req, ok := state.RequirementFor(cmd.RoleName)
		if !ok {
			return shared.ErrUnknownRole
		}

		if existing, has := state.Applications[cmd.MemberID]; has && existing.IsPending() {
			return shared.ErrDuplicatePending
		}

		balance := state.Ledger.Balance(cmd.MemberID)
		result.Balance = balance
		result.Threshold = req.ThresholdXP
		if balance < req.ThresholdXP {
			return shared.ErrInsufficientXP
		}

		app := roleapp.NewApplication(cmd.MemberID, req, cmd.RequestedAt)
		state.Applications[cmd.MemberID] = app
		result.Application = *app

		result.Events = append(result.Events, shared.NewApplicationSubmittedEvent(
			uuid.NewString(), cmd.MemberID, req.RoleID, req.RoleName, balance, req.ThresholdXP, cmd.RequestedAt,
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
