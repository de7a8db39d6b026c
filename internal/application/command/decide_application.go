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
// DECIDE APPLICATION COMMAND
// A high-rank member approves or denies a pending application. Deciding
// removes the application, so the member may apply again afterwards. Role
// assignment itself happens downstream, off the decided event.
// ══════════════════════════════════════════════════════════════════════════════

// DecideApplicationCommand contains a decision on a pending application.
type DecideApplicationCommand struct {
	// ApplicantID is the member whose application is being decided.
	ApplicantID shared.MemberID

	// DeciderID is the member making the decision.
	DeciderID shared.MemberID

	// DeciderIsHighRank reports whether the decider holds the high-rank
	// role. The gateway resolves role membership before dispatching.
	DeciderIsHighRank bool

	// Approved is the verdict.
	Approved bool

	// DecidedAt is when the decision was made.
	DecidedAt time.Time
}

// Validate validates the command.
func (c DecideApplicationCommand) Validate() error {
	if !c.ApplicantID.IsValid() || !c.DeciderID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	if c.DecidedAt.IsZero() {
		return shared.NewDomainError("command", "DecideApplication", shared.ErrInvalidInput, "decided_at is required")
	}
	return nil
}

// DecideApplicationResult contains the resolved application.
type DecideApplicationResult struct {
	Application roleapp.Application

	// Events contains the decision notification.
	Events []shared.Event
}

// DecideApplicationHandler handles the DecideApplicationCommand.
type DecideApplicationHandler struct {
	manager   *guildstate.Manager
	publisher shared.EventPublisher
}

// NewDecideApplicationHandler creates a new DecideApplicationHandler.
func NewDecideApplicationHandler(manager *guildstate.Manager, publisher shared.EventPublisher) *DecideApplicationHandler {
	return &DecideApplicationHandler{manager: manager, publisher: publisher}
}

// Handle executes the decide application command.
func (h *DecideApplicationHandler) Handle(ctx context.Context, cmd DecideApplicationCommand) (*DecideApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if !cmd.DeciderIsHighRank {
		return nil, shared.ErrNotHighRank
	}

	result := &DecideApplicationResult{Events: make([]shared.Event, 0, 1)}

	err := h.manager.Update(ctx, func(state *guildstate.State) error {
		app, ok := state.Applications[cmd.ApplicantID]
		if !ok || !app.IsPending() {
			return shared.ErrNoPendingApplication
		}

		if err := app.Decide(cmd.Approved); err != nil {
			return err
		}
		delete(state.Applications, cmd.ApplicantID)
		result.Application = *app

		result.Events = append(result.Events, shared.NewApplicationDecidedEvent(
			uuid.NewString(), cmd.ApplicantID, app.RoleID, app.RoleName, cmd.Approved, cmd.DeciderID, cmd.DecidedAt,
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
