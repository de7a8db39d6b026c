package roleapp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestNewApplication_StartsPending(t *testing.T) {
	req := Requirement{RoleID: "role-veteran", RoleName: "Veteran", ThresholdXP: 500}

	app := NewApplication("member-1", req, base)

	assert.Equal(t, shared.MemberID("member-1"), app.MemberID)
	assert.Equal(t, shared.RoleID("role-veteran"), app.RoleID)
	assert.Equal(t, "Veteran", app.RoleName)
	assert.Equal(t, base, app.RequestedAt)
	assert.Equal(t, StatusPending, app.Status)
	assert.True(t, app.IsPending())
}

func TestDecide_Approve(t *testing.T) {
	app := NewApplication("member-1", Requirement{RoleID: "r", RoleName: "Veteran"}, base)

	require.NoError(t, app.Decide(true))

	assert.Equal(t, StatusApproved, app.Status)
	assert.False(t, app.IsPending())
}

func TestDecide_Deny(t *testing.T) {
	app := NewApplication("member-1", Requirement{RoleID: "r", RoleName: "Veteran"}, base)

	require.NoError(t, app.Decide(false))

	assert.Equal(t, StatusDenied, app.Status)
}

func TestDecide_TwiceFails(t *testing.T) {
	app := NewApplication("member-1", Requirement{RoleID: "r", RoleName: "Veteran"}, base)
	require.NoError(t, app.Decide(true))

	err := app.Decide(false)

	assert.ErrorIs(t, err, shared.ErrStateTransition)
	assert.Equal(t, StatusApproved, app.Status)
}

func TestNormalizeRoleName(t *testing.T) {
	assert.Equal(t, "veteran", NormalizeRoleName("  Veteran "))
	assert.Equal(t, "veteran", NormalizeRoleName("VETERAN"))
	assert.Equal(t, "", NormalizeRoleName("   "))
}
