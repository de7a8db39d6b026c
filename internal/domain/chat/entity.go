// Package chat contains the per-member chat activity state and the
// accept/reject filter that feeds the batching counter. Rejected messages
// leave state untouched; there is no rollback because nothing is written.
package chat

import (
	"time"
	"unicode/utf8"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// Config holds the chat filter tuning.
type Config struct {
	// Cooldown is the minimum gap between two counted messages.
	Cooldown time.Duration

	// MinLength is the minimum message length in characters.
	MinLength int

	// BatchSize is the number of accepted messages per payout.
	BatchSize int

	// GrantAmount is the XP paid per completed batch.
	GrantAmount shared.XP
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		Cooldown:    30 * time.Second,
		MinLength:   5,
		BatchSize:   100,
		GrantAmount: 10,
	}
}

// RejectReason explains why a message was not counted.
type RejectReason string

const (
	RejectNone      RejectReason = ""
	RejectCooldown  RejectReason = "cooldown"
	RejectDuplicate RejectReason = "duplicate-content"
	RejectTooShort  RejectReason = "too-short"
)

// State tracks one member's counted chat activity.
type State struct {
	MemberID      shared.MemberID `json:"member_id"`
	LastMessageAt time.Time       `json:"last_message_at"`
	LastContent   string          `json:"last_content"`
	MessageCount  int             `json:"message_count"`
}

// NewState creates the state for a member's first eligible message.
func NewState(memberID shared.MemberID) *State {
	return &State{MemberID: memberID}
}

// Result reports the outcome of observing one message.
type Result struct {
	Accepted       bool
	Reason         RejectReason
	MessageCount   int
	BatchCompleted bool
}

// Observe applies the filter to a message. Checks run in order: cooldown,
// duplicate content (byte-identical to the previous accepted message),
// minimum length. An accepted message updates the state and completes a
// batch when the counter hits a multiple of BatchSize.
func (s *State) Observe(content string, now time.Time, cfg Config) Result {
	if !s.LastMessageAt.IsZero() && now.Sub(s.LastMessageAt) < cfg.Cooldown {
		return Result{Reason: RejectCooldown, MessageCount: s.MessageCount}
	}
	if s.MessageCount > 0 && content == s.LastContent {
		return Result{Reason: RejectDuplicate, MessageCount: s.MessageCount}
	}
	if utf8.RuneCountInString(content) < cfg.MinLength {
		return Result{Reason: RejectTooShort, MessageCount: s.MessageCount}
	}

	s.LastMessageAt = now
	s.LastContent = content
	s.MessageCount++

	return Result{
		Accepted:       true,
		MessageCount:   s.MessageCount,
		BatchCompleted: s.MessageCount%cfg.BatchSize == 0,
	}
}
