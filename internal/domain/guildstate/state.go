// Package guildstate composes the per-domain documents into the single
// durable snapshot the engine reads, mutates, and writes as one unit.
package guildstate

import (
	"context"

	"github.com/guildhub/guild-progression-bot/internal/domain/chat"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/roleapp"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/internal/domain/voice"
)

// Settings holds the admin-configured channel and role wiring. Zero values
// mean "not configured"; features that need a setting refuse to run until an
// admin supplies it.
type Settings struct {
	PanicChannel       shared.ChannelID `json:"panic_channel_id"`
	PanicRole          shared.RoleID    `json:"panic_role_id"`
	XPLogChannel       shared.ChannelID `json:"xp_log_channel_id"`
	ApplicationChannel shared.ChannelID `json:"application_channel_id"`
	InfoLogChannel     shared.ChannelID `json:"information_log_channel_id"`
	PoliceRole         shared.RoleID    `json:"police_role_id"`
	HighRankRole       shared.RoleID    `json:"highrank_role_id"`

	// EligibleRole gates XP accrual; members without it are ignored by the
	// chat and voice trackers. Empty means everyone accrues.
	EligibleRole shared.RoleID `json:"eligible_role_id"`

	// Requirements maps normalized role names to their XP gates.
	Requirements map[string]roleapp.Requirement `json:"role_requirements"`
}

// State is the complete persisted snapshot. The manager serializes all access,
// so no field carries its own locking.
type State struct {
	Ledger        ledger.Book                            `json:"ledger"`
	ChatStates    map[shared.MemberID]*chat.State        `json:"chat_states"`
	VoiceSessions map[shared.MemberID]*voice.Session     `json:"voice_sessions"`
	Applications  map[shared.MemberID]*roleapp.Application `json:"applications"`
	Settings      Settings                               `json:"settings"`
}

// DefaultState returns the bootstrap snapshot used when no persisted state
// exists yet.
func DefaultState() *State {
	return &State{
		Ledger:        ledger.NewBook(),
		ChatStates:    make(map[shared.MemberID]*chat.State),
		VoiceSessions: make(map[shared.MemberID]*voice.Session),
		Applications:  make(map[shared.MemberID]*roleapp.Application),
		Settings: Settings{
			Requirements: make(map[string]roleapp.Requirement),
		},
	}
}

// Normalize fills in nil maps on a snapshot loaded from storage so callers
// can mutate without nil checks.
func (s *State) Normalize() {
	if s.Ledger.Balances == nil {
		s.Ledger.Balances = make(map[shared.MemberID]shared.XP)
	}
	if s.Ledger.Entries == nil {
		s.Ledger.Entries = make([]ledger.Entry, 0)
	}
	if s.ChatStates == nil {
		s.ChatStates = make(map[shared.MemberID]*chat.State)
	}
	if s.VoiceSessions == nil {
		s.VoiceSessions = make(map[shared.MemberID]*voice.Session)
	}
	if s.Applications == nil {
		s.Applications = make(map[shared.MemberID]*roleapp.Application)
	}
	if s.Settings.Requirements == nil {
		s.Settings.Requirements = make(map[string]roleapp.Requirement)
	}
}

// RequirementFor looks up the XP gate for a role by display name,
// case-insensitively.
func (s *State) RequirementFor(roleName string) (roleapp.Requirement, bool) {
	req, ok := s.Settings.Requirements[roleapp.NormalizeRoleName(roleName)]
	return req, ok
}

// SnapshotStore loads and saves the whole snapshot as one unit.
type SnapshotStore interface {
	// Load returns the persisted snapshot, or (nil, nil) when none exists.
	Load(ctx context.Context) (*State, error)

	// Save durably replaces the persisted snapshot.
	Save(ctx context.Context, state *State) error
}
