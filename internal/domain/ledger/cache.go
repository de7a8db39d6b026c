package ledger

import (
	"context"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// RankedEntry is one leaderboard row.
type RankedEntry struct {
	// Rank starts at 1.
	Rank     int             `json:"rank"`
	MemberID shared.MemberID `json:"member_id"`
	Balance  shared.XP       `json:"balance"`
}

// LeaderboardCache is the read-optimized balance ranking. The snapshot remains
// the source of truth; the cache is a projection rebuilt or incremented from
// grant events and may lag or be unavailable.
type LeaderboardCache interface {
	// GetTop returns the highest balances in descending order.
	GetTop(ctx context.Context, limit int) ([]RankedEntry, error)

	// IncrementScore adds delta to a member's cached balance.
	IncrementScore(ctx context.Context, memberID shared.MemberID, delta shared.XP) error

	// Rebuild replaces the whole ranking from authoritative balances.
	Rebuild(ctx context.Context, balances map[shared.MemberID]shared.XP) error
}
