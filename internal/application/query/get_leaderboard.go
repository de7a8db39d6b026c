package query

import (
	"context"
	"sort"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Serves the top balances from the cache when available, falling back to a
// sort of the authoritative snapshot when the cache is cold or down.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery requests the top N balances.
type GetLeaderboardQuery struct {
	// Limit is the number of rows (default 10, max 100).
	Limit int
}

// Validate validates and normalizes the query.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return shared.NewDomainError("query", "GetLeaderboard", shared.ErrInvalidInput, "limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// GetLeaderboardResult contains the ranked rows.
type GetLeaderboardResult struct {
	Entries []ledger.RankedEntry `json:"entries"`

	// FromCache reports whether the cache served the request.
	FromCache bool `json:"from_cache"`
}

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	manager *guildstate.Manager
	cache   ledger.LeaderboardCache
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler. The cache is
// optional; a nil cache always falls back to the snapshot.
func NewGetLeaderboardHandler(manager *guildstate.Manager, cache ledger.LeaderboardCache) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{manager: manager, cache: cache}
}

// Handle executes the get leaderboard query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		entries, err := h.cache.GetTop(ctx, q.Limit)
		if err == nil && len(entries) > 0 {
			return &GetLeaderboardResult{Entries: entries, FromCache: true}, nil
		}
	}

	result := &GetLeaderboardResult{}
	err := h.manager.View(func(state *guildstate.State) error {
		entries := make([]ledger.RankedEntry, 0, len(state.Ledger.Balances))
		for memberID, balance := range state.Ledger.Balances {
			entries = append(entries, ledger.RankedEntry{MemberID: memberID, Balance: balance})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Balance != entries[j].Balance {
				return entries[i].Balance > entries[j].Balance
			}
			return entries[i].MemberID < entries[j].MemberID
		})
		if len(entries) > q.Limit {
			entries = entries[:q.Limit]
		}
		for i := range entries {
			entries[i].Rank = i + 1
		}
		result.Entries = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
