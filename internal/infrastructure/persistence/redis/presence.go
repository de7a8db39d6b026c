package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// PresenceTTL bounds how long a stale presence record survives a missed
// session-ended event.
const PresenceTTL = 24 * time.Hour

// PresenceRecord mirrors one live voice session for external consumers
// (dashboards, the HTTP surface) without touching the snapshot.
type PresenceRecord struct {
	MemberID shared.MemberID  `json:"member_id"`
	Channel  shared.ChannelID `json:"channel"`
	JoinedAt time.Time        `json:"joined_at"`
}

// PresenceMirror tracks who is currently in voice, keyed per member.
type PresenceMirror struct {
	cache *Cache
}

// NewPresenceMirror creates a PresenceMirror on the shared client.
func NewPresenceMirror(cache *Cache) *PresenceMirror {
	return &PresenceMirror{cache: cache}
}

// SetPresent records a member's voice session.
func (p *PresenceMirror) SetPresent(ctx context.Context, record PresenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return p.cache.Client().Set(ctx, keyPresence+record.MemberID.String(), data, PresenceTTL).Err()
}

// SetAbsent clears a member's presence record.
func (p *PresenceMirror) SetAbsent(ctx context.Context, memberID shared.MemberID) error {
	return p.cache.Client().Del(ctx, keyPresence+memberID.String()).Err()
}

// Get returns a member's presence record, or ErrCacheMiss when not in voice.
func (p *PresenceMirror) Get(ctx context.Context, memberID shared.MemberID) (*PresenceRecord, error) {
	data, err := p.cache.Client().Get(ctx, keyPresence+memberID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var record PresenceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
