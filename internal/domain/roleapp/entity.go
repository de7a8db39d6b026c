// Package roleapp contains the role application workflow entities: XP-gated
// requirements and the single-pending-request application lifecycle.
package roleapp

import (
	"strings"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// Status is the lifecycle state of an application. An application is removed
// from state once decided, so persisted applications are always pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Requirement gates a role behind an XP threshold. Requirements are
// configured by admins and only read by the workflow.
type Requirement struct {
	RoleID      shared.RoleID `json:"role_id"`
	RoleName    string        `json:"role_name"`
	ThresholdXP shared.XP     `json:"threshold_xp"`
}

// NormalizeRoleName returns the case-insensitive lookup key for a role name.
func NormalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Application is a member's pending request for a role.
type Application struct {
	MemberID    shared.MemberID `json:"member_id"`
	RoleID      shared.RoleID   `json:"role_id"`
	RoleName    string          `json:"role_name"`
	RequestedAt time.Time       `json:"requested_at"`
	Status      Status          `json:"status"`
}

// NewApplication creates a pending application for the given requirement.
func NewApplication(memberID shared.MemberID, req Requirement, now time.Time) *Application {
	return &Application{
		MemberID:    memberID,
		RoleID:      req.RoleID,
		RoleName:    req.RoleName,
		RequestedAt: now,
		Status:      StatusPending,
	}
}

// Decide resolves a pending application exactly once.
func (a *Application) Decide(approved bool) error {
	if a.Status != StatusPending {
		return shared.NewDomainError("roleapp", "Decide", shared.ErrStateTransition, "application already decided")
	}
	if approved {
		a.Status = StatusApproved
	} else {
		a.Status = StatusDenied
	}
	return nil
}

// IsPending reports whether the application awaits a decision.
func (a *Application) IsPending() bool {
	return a.Status == StatusPending
}
