package query

import (
	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/roleapp"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PENDING APPLICATION QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetPendingApplicationQuery requests one member's pending application.
type GetPendingApplicationQuery struct {
	MemberID shared.MemberID
}

// Validate validates the query.
func (q GetPendingApplicationQuery) Validate() error {
	if !q.MemberID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	return nil
}

// GetPendingApplicationResult contains the application, if any.
type GetPendingApplicationResult struct {
	// Application is nil when the member has no pending application.
	Application *roleapp.Application `json:"application,omitempty"`
}

// GetPendingApplicationHandler handles the GetPendingApplicationQuery.
type GetPendingApplicationHandler struct {
	manager *guildstate.Manager
}

// NewGetPendingApplicationHandler creates a new GetPendingApplicationHandler.
func NewGetPendingApplicationHandler(manager *guildstate.Manager) *GetPendingApplicationHandler {
	return &GetPendingApplicationHandler{manager: manager}
}

// Handle executes the get pending application query.
func (h *GetPendingApplicationHandler) Handle(q GetPendingApplicationQuery) (*GetPendingApplicationResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &GetPendingApplicationResult{}
	err := h.manager.View(func(state *guildstate.State) error {
		if app, ok := state.Applications[q.MemberID]; ok && app.IsPending() {
			clone := *app
			result.Application = &clone
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
