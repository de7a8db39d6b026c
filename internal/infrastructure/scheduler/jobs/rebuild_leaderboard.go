package jobs

import (
	"context"
	"log/slog"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/pkg/retry"
)

// RebuildLeaderboardJob periodically replaces the cached ranking from the
// authoritative snapshot, correcting any drift from missed grant events.
type RebuildLeaderboardJob struct {
	manager *guildstate.Manager
	cache   ledger.LeaderboardCache
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewRebuildLeaderboardJob creates a new RebuildLeaderboardJob.
func NewRebuildLeaderboardJob(manager *guildstate.Manager, cache ledger.LeaderboardCache, logger *slog.Logger) *RebuildLeaderboardJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RebuildLeaderboardJob{
		manager: manager,
		cache:   cache,
		retrier: retry.CacheRetrier(),
		logger:  logger,
	}
}

// Name implements scheduler.Job.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description implements scheduler.Job.
func (j *RebuildLeaderboardJob) Description() string {
	return "Rebuilds the cached XP ranking from authoritative balances"
}

// Run implements scheduler.Job.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	balances := make(map[shared.MemberID]shared.XP)
	err := j.manager.View(func(state *guildstate.State) error {
		for memberID, balance := range state.Ledger.Balances {
			balances[memberID] = balance
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = j.retrier.Do(ctx, func(ctx context.Context) error {
		return retry.Retryable(j.cache.Rebuild(ctx, balances))
	})
	if err != nil {
		return err
	}

	j.logger.Debug("leaderboard rebuilt", "members", len(balances))
	return nil
}
