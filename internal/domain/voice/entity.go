// Package voice contains the per-member voice session state machine.
// A session exists only while the member is connected to a voice channel;
// the periodic tick converts elapsed unmuted time into payouts and punishes
// prolonged mute by forfeiting the accrued interval.
package voice

import (
	"time"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// Config holds the voice tracker tuning.
type Config struct {
	// GrantInterval is the unmuted time required per payout.
	GrantInterval time.Duration

	// MaxMuteTime is the continuous mute duration after which the accrued
	// interval is forfeited instead of paid out.
	MaxMuteTime time.Duration

	// GrantAmount is the XP paid per elapsed interval.
	GrantAmount shared.XP
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		GrantInterval: 10 * time.Minute,
		MaxMuteTime:   5 * time.Minute,
		GrantAmount:   5,
	}
}

// Session is the live voice-presence record for one connected member.
type Session struct {
	MemberID    shared.MemberID  `json:"member_id"`
	Channel     shared.ChannelID `json:"channel"`
	JoinedAt    time.Time        `json:"joined_at"`
	LastGrantAt time.Time        `json:"last_grant_at"`
	MutedSince  *time.Time       `json:"muted_since,omitempty"`
}

// NewSession creates a session for a member joining a voice channel unmuted.
func NewSession(memberID shared.MemberID, channel shared.ChannelID, now time.Time) *Session {
	return &Session{
		MemberID:    memberID,
		Channel:     channel,
		JoinedAt:    now,
		LastGrantAt: now,
	}
}

// IsMuted reports whether the member is currently muted or deafened.
func (s *Session) IsMuted() bool {
	return s.MutedSince != nil
}

// SetMuted records a mute state change. Engaging mute while already muted is
// idempotent and keeps the original mute start.
func (s *Session) SetMuted(muted bool, now time.Time) {
	if muted {
		if s.MutedSince == nil {
			at := now
			s.MutedSince = &at
		}
		return
	}
	s.MutedSince = nil
}

// MoveTo records a channel change without disturbing grant accounting.
func (s *Session) MoveTo(channel shared.ChannelID) {
	s.Channel = channel
}

// Duration returns the time connected so far.
func (s *Session) Duration(now time.Time) time.Duration {
	return now.Sub(s.JoinedAt)
}

// TickOutcome is the result of advancing a session by one tick.
type TickOutcome int

const (
	// TickNoop - nothing elapsed; muted members below the penalty
	// threshold also land here, they accrue nothing and simply wait.
	TickNoop TickOutcome = iota

	// TickGrant - an unmuted interval elapsed and XP is owed.
	TickGrant

	// TickMutePenalty - prolonged mute; the interval is forfeited and the
	// grant clock restarts without a payout.
	TickMutePenalty
)

// Tick advances the session clock. On TickGrant the caller pays GrantAmount;
// on TickMutePenalty nothing is paid. Both outcomes reset LastGrantAt.
func (s *Session) Tick(now time.Time, cfg Config) TickOutcome {
	if s.MutedSince != nil {
		if now.Sub(*s.MutedSince) > cfg.MaxMuteTime {
			s.LastGrantAt = now
			return TickMutePenalty
		}
		return TickNoop
	}

	if now.Sub(s.LastGrantAt) >= cfg.GrantInterval {
		s.LastGrantAt = now
		return TickGrant
	}
	return TickNoop
}
