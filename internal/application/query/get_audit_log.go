package query

import (
	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET AUDIT LOG QUERY
// Returns grant entries in append order, optionally scoped to one member and
// limited to the most recent N.
// ══════════════════════════════════════════════════════════════════════════════

// GetAuditLogQuery requests grant history.
type GetAuditLogQuery struct {
	// MemberID scopes the log to one member; empty returns all entries.
	MemberID shared.MemberID

	// Limit caps the result to the most recent N entries (0 = no cap).
	Limit int
}

// Validate validates the query.
func (q GetAuditLogQuery) Validate() error {
	if q.Limit < 0 {
		return shared.NewDomainError("query", "GetAuditLog", shared.ErrInvalidInput, "limit cannot be negative")
	}
	return nil
}

// GetAuditLogResult contains the matching entries, oldest first.
type GetAuditLogResult struct {
	Entries    []ledger.Entry `json:"entries"`
	TotalCount int            `json:"total_count"`
}

// GetAuditLogHandler handles the GetAuditLogQuery.
type GetAuditLogHandler struct {
	manager *guildstate.Manager
}

// NewGetAuditLogHandler creates a new GetAuditLogHandler.
func NewGetAuditLogHandler(manager *guildstate.Manager) *GetAuditLogHandler {
	return &GetAuditLogHandler{manager: manager}
}

// Handle executes the get audit log query.
func (h *GetAuditLogHandler) Handle(q GetAuditLogQuery) (*GetAuditLogResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &GetAuditLogResult{}
	err := h.manager.View(func(state *guildstate.State) error {
		var entries []ledger.Entry
		if q.MemberID.IsValid() {
			entries = state.Ledger.EntriesFor(q.MemberID)
		} else {
			entries = state.Ledger.AuditLog()
		}

		result.TotalCount = len(entries)
		if q.Limit > 0 && len(entries) > q.Limit {
			entries = entries[len(entries)-q.Limit:]
		}
		result.Entries = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
