// Package ledger contains the XP balance book and its append-only audit log.
// Balances only change through Grant; absence of a balance is a valid zero
// state, not an error.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// Reason describes why XP was granted.
type Reason string

const (
	// ReasonChatActivity is a payout for a completed chat message batch.
	ReasonChatActivity Reason = "chat-activity"

	// ReasonVoiceActivity is a payout for an elapsed unmuted voice interval.
	ReasonVoiceActivity Reason = "voice-activity"
)

// Entry is a single audit log record. Entries are append-only, ordered by
// grant time, and never mutated or deleted. GrantID makes each grant
// individually addressable after the fact.
type Entry struct {
	GrantID   string          `json:"grant_id"`
	MemberID  shared.MemberID `json:"member_id"`
	Amount    shared.XP       `json:"amount"`
	Reason    Reason          `json:"reason"`
	GrantedAt time.Time       `json:"granted_at"`
}

// Book holds all member balances and the audit log. It is a plain document
// embedded in the guild state snapshot; callers serialize access through the
// snapshot manager.
type Book struct {
	Balances map[shared.MemberID]shared.XP `json:"xp"`
	Entries  []Entry                       `json:"xp_logs"`
}

// NewBook creates an empty book.
func NewBook() Book {
	return Book{
		Balances: make(map[shared.MemberID]shared.XP),
		Entries:  make([]Entry, 0),
	}
}

// Grant adds amount to the member's balance, appends an audit entry, and
// returns the new balance together with the entry. Amount must be positive;
// the caller validates business rules, the book validates the invariant.
func (b *Book) Grant(memberID shared.MemberID, amount shared.XP, reason Reason, now time.Time) (shared.XP, Entry, error) {
	if !memberID.IsValid() {
		return 0, Entry{}, shared.ErrInvalidMemberID
	}
	if amount <= 0 {
		return 0, Entry{}, shared.ErrGrantNotPositive
	}

	if b.Balances == nil {
		b.Balances = make(map[shared.MemberID]shared.XP)
	}

	newBalance := b.Balances[memberID].Add(amount)
	b.Balances[memberID] = newBalance

	entry := Entry{
		GrantID:   uuid.NewString(),
		MemberID:  memberID,
		Amount:    amount,
		Reason:    reason,
		GrantedAt: now,
	}
	b.Entries = append(b.Entries, entry)

	return newBalance, entry, nil
}

// Balance returns the member's balance, zero for unknown members.
func (b *Book) Balance(memberID shared.MemberID) shared.XP {
	return b.Balances[memberID]
}

// AuditLog returns a copy of all entries in append order.
func (b *Book) AuditLog() []Entry {
	out := make([]Entry, len(b.Entries))
	copy(out, b.Entries)
	return out
}

// EntriesFor returns the member's entries in append order.
func (b *Book) EntriesFor(memberID shared.MemberID) []Entry {
	out := make([]Entry, 0)
	for _, e := range b.Entries {
		if e.MemberID == memberID {
			out = append(out, e)
		}
	}
	return out
}
