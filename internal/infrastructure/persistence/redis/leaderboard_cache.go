package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// LeaderboardCache ranks member balances in a Redis sorted set. Rank lookups
// are O(log N) and the top-N read the leaderboard query serves is
// O(log N + M).
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a LeaderboardCache on the shared client.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// GetTop implements ledger.LeaderboardCache.
func (l *LeaderboardCache) GetTop(ctx context.Context, limit int) ([]ledger.RankedEntry, error) {
	if limit <= 0 {
		return []ledger.RankedEntry{}, nil
	}

	rows, err := l.cache.Client().ZRevRangeWithScores(ctx, keyLeaderboard, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ledger.RankedEntry, 0, len(rows))
	for i, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, ledger.RankedEntry{
			Rank:     i + 1,
			MemberID: shared.MemberID(member),
			Balance:  shared.XP(int(row.Score)),
		})
	}
	return entries, nil
}

// IncrementScore implements ledger.LeaderboardCache.
func (l *LeaderboardCache) IncrementScore(ctx context.Context, memberID shared.MemberID, delta shared.XP) error {
	return l.cache.Client().ZIncrBy(ctx, keyLeaderboard, float64(delta.Int()), memberID.String()).Err()
}

// Rebuild implements ledger.LeaderboardCache. The replacement is atomic: the
// old set is deleted and repopulated inside one transaction pipeline.
func (l *LeaderboardCache) Rebuild(ctx context.Context, balances map[shared.MemberID]shared.XP) error {
	pipe := l.cache.Client().TxPipeline()
	pipe.Del(ctx, keyLeaderboard)

	if len(balances) > 0 {
		members := make([]redis.Z, 0, len(balances))
		for memberID, balance := range balances {
			members = append(members, redis.Z{
				Score:  float64(balance.Int()),
				Member: memberID.String(),
			})
		}
		pipe.ZAdd(ctx, keyLeaderboard, members...)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Rank returns a member's 1-based rank, or ErrCacheMiss when absent.
func (l *LeaderboardCache) Rank(ctx context.Context, memberID shared.MemberID) (int, error) {
	rank, err := l.cache.Client().ZRevRank(ctx, keyLeaderboard, memberID.String()).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrCacheMiss
		}
		return 0, err
	}
	return int(rank) + 1, nil
}
