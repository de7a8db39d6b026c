package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/interface/gateway"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLATFORM EVENT INGRESS
// ══════════════════════════════════════════════════════════════════════════════
//
// The chat platform connector runs out of process and forwards member events
// as JSON webhooks. Every payload carries the member's current role IDs so
// permission gates are evaluated against the state the platform saw.

// memberPayload is the platform's member description embedded in each event.
type memberPayload struct {
	ID    string   `json:"id"`
	IsBot bool     `json:"is_bot"`
	Roles []string `json:"roles"`
}

func (p memberPayload) toMemberInfo() gateway.MemberInfo {
	roles := make([]shared.RoleID, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, shared.RoleID(r))
	}
	return gateway.MemberInfo{
		ID:    shared.MemberID(p.ID),
		IsBot: p.IsBot,
		Roles: roles,
	}
}

// eventTime returns the supplied timestamp or the current time when absent.
func eventTime(at *time.Time) time.Time {
	if at != nil && !at.IsZero() {
		return at.UTC()
	}
	return time.Now().UTC()
}

func (s *Server) setupWebhookRoutes() {
	if s.deps.Gateway == nil {
		return
	}

	s.router.HandleFunc("POST /webhook/events/message", s.handleMessageEvent)
	s.router.HandleFunc("POST /webhook/events/voice", s.handleVoiceEvent)

	s.router.HandleFunc("POST /api/v1/applications", s.handleSubmitApplication)
	s.router.HandleFunc("POST /api/v1/applications/{id}/decision", s.handleDecideApplication)
	s.router.HandleFunc("POST /api/v1/panic", s.handlePanic)

	s.router.HandleFunc("PUT /api/v1/admin/settings", s.handleConfigure)
	s.router.HandleFunc("PUT /api/v1/admin/requirements", s.handleSetRequirement)
	s.router.HandleFunc("DELETE /api/v1/admin/requirements", s.handleRemoveRequirement)
}

func (s *Server) handleMessageEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Member     memberPayload `json:"member"`
		Content    string        `json:"content"`
		ObservedAt *time.Time    `json:"observed_at"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Gateway.OnMessage(r.Context(), req.Member.toMemberInfo(), req.Content, eventTime(req.ObservedAt))
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVoiceEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Member     memberPayload `json:"member"`
		Channel    string        `json:"channel"`
		SelfMute   bool          `json:"self_mute"`
		SelfDeaf   bool          `json:"self_deaf"`
		ObservedAt *time.Time    `json:"observed_at"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Gateway.OnVoiceStateChange(r.Context(), req.Member.toMemberInfo(),
		shared.ChannelID(req.Channel), req.SelfMute, req.SelfDeaf, eventTime(req.ObservedAt))
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Member   memberPayload `json:"member"`
		RoleName string        `json:"role_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Gateway.OnRoleRequest(r.Context(), req.Member.toMemberInfo(), req.RoleName, time.Now().UTC())
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleDecideApplication(w http.ResponseWriter, r *http.Request) {
	applicantID := shared.MemberID(r.PathValue("id"))

	var req struct {
		Decider  memberPayload `json:"decider"`
		Approved bool          `json:"approved"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Gateway.OnDecision(r.Context(), req.Decider.toMemberInfo(), applicantID, req.Approved, time.Now().UTC())
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePanic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Member   memberPayload `json:"member"`
		RaisedIn string        `json:"raised_in"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Gateway.OnPanic(r.Context(), req.Member.toMemberInfo(), shared.ChannelID(req.RaisedIn), time.Now().UTC())
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor   memberPayload `json:"actor"`
		Setting string        `json:"setting"`
		Value   string        `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.deps.Gateway.OnConfigure(r.Context(), req.Actor.toMemberInfo(), req.Setting, req.Value); err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"setting": req.Setting})
}

func (s *Server) handleSetRequirement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor       memberPayload `json:"actor"`
		RoleID      string        `json:"role_id"`
		RoleName    string        `json:"role_name"`
		ThresholdXP int           `json:"threshold_xp"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.deps.Gateway.OnSetRequirement(r.Context(), req.Actor.toMemberInfo(),
		shared.RoleID(req.RoleID), req.RoleName, shared.XP(req.ThresholdXP))
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role_name": req.RoleName})
}

func (s *Server) handleRemoveRequirement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actor    memberPayload `json:"actor"`
		RoleName string        `json:"role_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.deps.Gateway.OnRemoveRequirement(r.Context(), req.Actor.toMemberInfo(), req.RoleName); err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role_name": req.RoleName})
}

// decodeBody decodes the request body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return false
	}
	return true
}

// writeCommandError maps domain errors from command dispatch to HTTP status codes.
func (s *Server) writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsPermission(err):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.logger.Error("command failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "command failed")
	}
}
