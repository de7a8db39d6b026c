package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub/guild-progression-bot/internal/application/command"
	"github.com/guildhub/guild-progression-bot/internal/application/query"
	"github.com/guildhub/guild-progression-bot/internal/domain/chat"
	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/ledger"
	"github.com/guildhub/guild-progression-bot/internal/domain/roleapp"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
	"github.com/guildhub/guild-progression-bot/internal/infrastructure/persistence/memory"
	"github.com/guildhub/guild-progression-bot/internal/interface/gateway"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type dropPublisher struct{}

func (dropPublisher) Publish(shared.Event) error { return nil }

func newTestServer(t *testing.T, withGateway bool) (*Server, *guildstate.Manager) {
	t.Helper()
	manager, err := guildstate.NewManager(context.Background(), memory.NewStore())
	require.NoError(t, err)

	deps := Dependencies{
		GetLeaderboardHandler:        query.NewGetLeaderboardHandler(manager, nil),
		GetBalanceHandler:            query.NewGetBalanceHandler(manager),
		GetAuditLogHandler:           query.NewGetAuditLogHandler(manager),
		GetPendingApplicationHandler: query.NewGetPendingApplicationHandler(manager),
	}
	if withGateway {
		pub := dropPublisher{}
		deps.Gateway = gateway.New(manager, gateway.Handlers{
			TrackMessage:      command.NewTrackMessageHandler(manager, pub, chat.DefaultConfig()),
			UpdateVoiceState:  command.NewUpdateVoiceStateHandler(manager, pub),
			SubmitApplication: command.NewSubmitApplicationHandler(manager, pub),
			DecideApplication: command.NewDecideApplicationHandler(manager, pub),
			TriggerPanic:      command.NewTriggerPanicHandler(manager, pub),
			ConfigureGuild:    command.NewConfigureGuildHandler(manager),
			SetRequirement:    command.NewSetRoleRequirementHandler(manager),
			RemoveRequirement: command.NewRemoveRoleRequirementHandler(manager),
		}, nil)
	}

	return NewServer(DefaultConfig(), deps), manager
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func roleappRequirement() roleapp.Requirement {
	return roleapp.Requirement{RoleID: "role-veteran", RoleName: "Veteran", ThresholdXP: 500}
}

func seedBalance(t *testing.T, manager *guildstate.Manager, memberID shared.MemberID, amount shared.XP) {
	t.Helper()
	err := manager.Update(context.Background(), func(state *guildstate.State) error {
		_, _, err := state.Ledger.Grant(memberID, amount, ledger.ReasonChatActivity, base)
		return err
	})
	require.NoError(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := doRequest(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestLeaderboardEndpoint(t *testing.T) {
	s, manager := newTestServer(t, false)
	seedBalance(t, manager, "member-1", 40)
	seedBalance(t, manager, "member-2", 90)

	rec := doRequest(s, http.MethodGet, "/api/v1/leaderboard?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                        `json:"success"`
		Data    query.GetLeaderboardResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Entries, 2)
	assert.Equal(t, shared.MemberID("member-2"), resp.Data.Entries[0].MemberID)
}

func TestLeaderboardEndpoint_InvalidLimit(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := doRequest(s, http.MethodGet, "/api/v1/leaderboard?limit=-1", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_request", resp.Error.Code)
}

func TestBalanceEndpoint(t *testing.T) {
	s, manager := newTestServer(t, false)
	seedBalance(t, manager, "member-1", 40)

	rec := doRequest(s, http.MethodGet, "/api/v1/members/member-1/balance", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data query.GetBalanceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, shared.XP(40), resp.Data.Balance)
}

func TestApplicationEndpoint_NotFound(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := doRequest(s, http.MethodGet, "/api/v1/members/member-1/application", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestWebhookRoutes_AbsentWithoutGateway(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := doRequest(s, http.MethodPost, "/webhook/events/message", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageWebhook(t *testing.T) {
	s, _ := newTestServer(t, true)

	body := `{"member":{"id":"member-1"},"content":"hello everyone","observed_at":"2026-08-01T12:00:00Z"}`
	rec := doRequest(s, http.MethodPost, "/webhook/events/message", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data command.TrackMessageResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Tracked)
	assert.Equal(t, 1, resp.Data.MessageCount)
}

func TestMessageWebhook_InvalidBody(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := doRequest(s, http.MethodPost, "/webhook/events/message", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_body", resp.Error.Code)
}

func TestDecisionWebhook_Forbidden(t *testing.T) {
	s, manager := newTestServer(t, true)
	err := manager.Update(context.Background(), func(state *guildstate.State) error {
		state.Settings.HighRankRole = "role-officers"
		return nil
	})
	require.NoError(t, err)

	body := `{"decider":{"id":"member-2"},"approved":true}`
	rec := doRequest(s, http.MethodPost, "/api/v1/applications/member-1/decision", body)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitApplicationWebhook_Conflict(t *testing.T) {
	s, manager := newTestServer(t, true)
	err := manager.Update(context.Background(), func(state *guildstate.State) error {
		state.Settings.Requirements["veteran"] = roleappRequirement()
		return nil
	})
	require.NoError(t, err)
	seedBalance(t, manager, "member-1", 600)

	body := `{"member":{"id":"member-1"},"role_name":"veteran"}`
	rec := doRequest(s, http.MethodPost, "/api/v1/applications", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/v1/applications", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminSettingsWebhook(t *testing.T) {
	s, manager := newTestServer(t, true)

	body := `{"actor":{"id":"officer-1"},"setting":"panic_channel","value":"alerts"}`
	rec := doRequest(s, http.MethodPut, "/api/v1/admin/settings", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	err := manager.View(func(state *guildstate.State) error {
		assert.Equal(t, shared.ChannelID("alerts"), state.Settings.PanicChannel)
		return nil
	})
	require.NoError(t, err)
}
