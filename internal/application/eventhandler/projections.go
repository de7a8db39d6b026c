// Package eventhandler contains subscribers that project payout and session
// events into the Redis caches. Projections are best effort: a failed write
// is logged and the caches catch up on the next rebuild.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/redis"
	"github.com/guildhub/guild-progression-bot/pkg/circuitbreaker"
	"github.com/guildhub/guild-progression-bot/pkg/retry"
)

const projectionTimeout = 5 * time.Second

// LeaderboardProjection increments the cached ranking on every grant.
type LeaderboardProjection struct {
	cache   ledger.LeaderboardCache
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewLeaderboardProjection creates the grant-event projection.
func NewLeaderboardProjection(cache ledger.LeaderboardCache, logger *slog.Logger) *LeaderboardProjection {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardProjection{
		cache:   cache,
		retrier: retry.CacheRetrier(),
		breaker: circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		}),
		logger: logger,
	}
}

// Register subscribes the projection to both grant event types.
func (p *LeaderboardProjection) Register(bus shared.EventSubscriber) error {
	if err := bus.Subscribe(shared.EventChatGrant, p.Handle); err != nil {
		return err
	}
	return bus.Subscribe(shared.EventVoiceGrant, p.Handle)
}

// Handle applies one grant event to the cached ranking.
func (p *LeaderboardProjection) Handle(event shared.Event) error {
	amount, ok := event.Payload()["amount"].(int)
	if !ok {
		return nil
	}
	memberID := shared.MemberID(event.AggregateID())

	ctx, cancel := context.WithTimeout(context.Background(), projectionTimeout)
	defer cancel()

	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.retrier.Do(ctx, func(ctx context.Context) error {
			return retry.Retryable(p.cache.IncrementScore(ctx, memberID, shared.XP(amount)))
		})
	})
	if err != nil {
		p.logger.Warn("leaderboard projection failed",
			"member_id", memberID,
			"amount", amount,
			"error", err,
		)
	}
	return nil
}

// PresenceProjection mirrors voice session lifecycle into Redis.
type PresenceProjection struct {
	mirror  *redis.PresenceMirror
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewPresenceProjection creates the session-event projection.
func NewPresenceProjection(mirror *redis.PresenceMirror, logger *slog.Logger) *PresenceProjection {
	if logger == nil {
		logger = slog.Default()
	}
	return &PresenceProjection{
		mirror:  mirror,
		retrier: retry.CacheRetrier(),
		logger:  logger,
	}
}

// Register subscribes the projection to session lifecycle events.
func (p *PresenceProjection) Register(bus shared.EventSubscriber) error {
	if err := bus.Subscribe(shared.EventVoiceSessionStarted, p.Handle); err != nil {
		return err
	}
	return bus.Subscribe(shared.EventVoiceSessionEnded, p.Handle)
}

// Handle mirrors one session event.
func (p *PresenceProjection) Handle(event shared.Event) error {
	memberID := shared.MemberID(event.AggregateID())

	ctx, cancel := context.WithTimeout(context.Background(), projectionTimeout)
	defer cancel()

	var err error
	switch event.EventType() {
	case shared.EventVoiceSessionStarted:
		channel, _ := event.Payload()["channel"].(string)
		record := redis.PresenceRecord{
			MemberID: memberID,
			Channel:  shared.ChannelID(channel),
			JoinedAt: event.OccurredAt(),
		}
		err = p.retrier.Do(ctx, func(ctx context.Context) error {
			return retry.Retryable(p.mirror.SetPresent(ctx, record))
		})
	case shared.EventVoiceSessionEnded:
		err = p.retrier.Do(ctx, func(ctx context.Context) error {
			return retry.Retryable(p.mirror.SetAbsent(ctx, memberID))
		})
	default:
		return nil
	}

	if err != nil {
		p.logger.Warn("presence projection failed",
			"member_id", memberID,
			"event_type", event.EventType(),
			"error", err,
		)
	}
	return nil
}
