// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
package query

import (
	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET BALANCE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetBalanceQuery requests one member's XP balance.
type GetBalanceQuery struct {
	MemberID shared.MemberID
}

// Validate validates the query.
func (q GetBalanceQuery) Validate() error {
	if !q.MemberID.IsValid() {
		return shared.ErrInvalidMemberID
	}
	return nil
}

// GetBalanceResult contains the balance. Unknown members report zero.
type GetBalanceResult struct {
	MemberID shared.MemberID `json:"member_id"`
	Balance  shared.XP       `json:"balance"`
}

// GetBalanceHandler handles the GetBalanceQuery.
type GetBalanceHandler struct {
	manager *guildstate.Manager
}

// NewGetBalanceHandler creates a new GetBalanceHandler.
func NewGetBalanceHandler(manager *guildstate.Manager) *GetBalanceHandler {
	return &GetBalanceHandler{manager: manager}
}

// Handle executes the get balance query.
func (h *GetBalanceHandler) Handle(q GetBalanceQuery) (*GetBalanceResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &GetBalanceResult{MemberID: q.MemberID}
	err := h.manager.View(func(state *guildstate.State) error {
		result.Balance = state.Ledger.Balance(q.MemberID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
