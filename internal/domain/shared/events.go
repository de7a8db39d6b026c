// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import "time"

// EventType identifies the kind of an outbound notification event.
type EventType string

// Notification kinds handed to the external rendering collaborator, plus the
// internal session lifecycle kinds consumed by the presence projection.
const (
	EventChatGrant            EventType = "chat-grant"
	EventVoiceGrant           EventType = "voice-grant"
	EventApplicationSubmitted EventType = "application-submitted"
	EventApplicationDecided   EventType = "application-decided"
	EventPanicAlert           EventType = "panic-alert"

	EventVoiceSessionStarted EventType = "voice-session-started"
	EventVoiceSessionEnded   EventType = "voice-session-ended"
)

// Event is the base interface for all notification events.
type Event interface {
	// EventType returns the kind of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the member the event concerns.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	MemberID  MemberID  `json:"member_id"`
}

// EventType implements Event.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event.
func (e BaseEvent) AggregateID() string {
	return string(e.MemberID)
}

// NewBaseEvent creates a new base event. The id is a caller-supplied unique
// token (a UUID in practice) so downstream consumers can deduplicate.
func NewBaseEvent(id string, eventType EventType, memberID MemberID, at time.Time) BaseEvent {
	return BaseEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: at,
		MemberID:  memberID,
	}
}

// ChatGrantEvent is emitted when a chat-activity batch completes and pays out.
type ChatGrantEvent struct {
	BaseEvent
	Amount       XP  `json:"amount"`
	NewBalance   XP  `json:"new_balance"`
	MessageCount int `json:"message_count"`
}

// Payload implements Event.
func (e ChatGrantEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member_id":     string(e.MemberID),
		"amount":        e.Amount.Int(),
		"new_balance":   e.NewBalance.Int(),
		"message_count": e.MessageCount,
	}
}

// NewChatGrantEvent creates a new ChatGrantEvent.
func NewChatGrantEvent(id string, memberID MemberID, amount, newBalance XP, messageCount int, at time.Time) ChatGrantEvent {
	return ChatGrantEvent{
		BaseEvent:    NewBaseEvent(id, EventChatGrant, memberID, at),
		Amount:       amount,
		NewBalance:   newBalance,
		MessageCount: messageCount,
	}
}

// VoiceGrantEvent is emitted when an unmuted voice interval pays out.
type VoiceGrantEvent struct {
	BaseEvent
	Amount     XP            `json:"amount"`
	NewBalance XP            `json:"new_balance"`
	SessionFor time.Duration `json:"session_for"`
}

// Payload implements Event.
func (e VoiceGrantEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member_id":   string(e.MemberID),
		"amount":      e.Amount.Int(),
		"new_balance": e.NewBalance.Int(),
		"session_for": e.SessionFor.String(),
	}
}

// NewVoiceGrantEvent creates a new VoiceGrantEvent.
func NewVoiceGrantEvent(id string, memberID MemberID, amount, newBalance XP, sessionFor time.Duration, at time.Time) VoiceGrantEvent {
	return VoiceGrantEvent{
		BaseEvent:  NewBaseEvent(id, EventVoiceGrant, memberID, at),
		Amount:     amount,
		NewBalance: newBalance,
		SessionFor: sessionFor,
	}
}

// ApplicationSubmittedEvent is emitted when a role application enters the
// pending state. The rendering layer presents the approve/deny prompt from it.
type ApplicationSubmittedEvent struct {
	BaseEvent
	RoleID    RoleID `json:"role_id"`
	RoleName  string `json:"role_name"`
	Balance   XP     `json:"balance"`
	Threshold XP     `json:"threshold"`
}

// Payload implements Event.
func (e ApplicationSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member_id": string(e.MemberID),
		"role_id":   string(e.RoleID),
		"role_name": e.RoleName,
		"balance":   e.Balance.Int(),
		"threshold": e.Threshold.Int(),
	}
}

// NewApplicationSubmittedEvent creates a new ApplicationSubmittedEvent.
func NewApplicationSubmittedEvent(id string, memberID MemberID, roleID RoleID, roleName string, balance, threshold XP, at time.Time) ApplicationSubmittedEvent {
	return ApplicationSubmittedEvent{
		BaseEvent: NewBaseEvent(id, EventApplicationSubmitted, memberID, at),
		RoleID:    roleID,
		RoleName:  roleName,
		Balance:   balance,
		Threshold: threshold,
	}
}

// ApplicationDecidedEvent is emitted when a pending application is resolved.
// On approval the external role-assignment collaborator grants the role.
type ApplicationDecidedEvent struct {
	BaseEvent
	RoleID    RoleID   `json:"role_id"`
	RoleName  string   `json:"role_name"`
	Approved  bool     `json:"approved"`
	DecidedBy MemberID `json:"decided_by"`
}

// Payload implements Event.
func (e ApplicationDecidedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member_id":  string(e.MemberID),
		"role_id":    string(e.RoleID),
		"role_name":  e.RoleName,
		"approved":   e.Approved,
		"decided_by": string(e.DecidedBy),
	}
}

// NewApplicationDecidedEvent creates a new ApplicationDecidedEvent.
func NewApplicationDecidedEvent(id string, memberID MemberID, roleID RoleID, roleName string, approved bool, decidedBy MemberID, at time.Time) ApplicationDecidedEvent {
	return ApplicationDecidedEvent{
		BaseEvent: NewBaseEvent(id, EventApplicationDecided, memberID, at),
		RoleID:    roleID,
		RoleName:  roleName,
		Approved:  approved,
		DecidedBy: decidedBy,
	}
}

// PanicAlertEvent is emitted when an eligible member raises a panic alert.
// The rendering layer posts to the configured panic channel mentioning the
// responder role.
type PanicAlertEvent struct {
	BaseEvent
	RaisedIn      ChannelID `json:"raised_in"`
	AlertChannel  ChannelID `json:"alert_channel"`
	ResponderRole RoleID    `json:"responder_role"`
}

// Payload implements Event.
func (e PanicAlertEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member_id":      string(e.MemberID),
		"raised_in":      string(e.RaisedIn),
		"alert_channel":  string(e.AlertChannel),
		"responder_role": string(e.ResponderRole),
	}
}

// NewPanicAlertEvent creates a new PanicAlertEvent.
func NewPanicAlertEvent(id string, memberID MemberID, raisedIn, alertChannel ChannelID, responderRole RoleID, at time.Time) PanicAlertEvent {
	return PanicAlertEvent{
		BaseEvent:     NewBaseEvent(id, EventPanicAlert, memberID, at),
		RaisedIn:      raisedIn,
		AlertChannel:  alertChannel,
		ResponderRole: responderRole,
	}
}

// VoiceSessionStartedEvent is emitted when a member joins a voice channel.
type VoiceSessionStartedEvent struct {
	BaseEvent
	Channel ChannelID `json:"channel"`
}

// Payload implements Event.
func (e VoiceSessionStartedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member_id": string(e.MemberID),
		"channel":   string(e.Channel),
	}
}

// NewVoiceSessionStartedEvent creates a new VoiceSessionStartedEvent.
func NewVoiceSessionStartedEvent(id string, memberID MemberID, channel ChannelID, at time.Time) VoiceSessionStartedEvent {
	return VoiceSessionStartedEvent{
		BaseEvent: NewBaseEvent(id, EventVoiceSessionStarted, memberID, at),
		Channel:   channel,
	}
}

// VoiceSessionEndedEvent is emitted when a member leaves voice entirely.
type VoiceSessionEndedEvent struct {
	BaseEvent
	Duration time.Duration `json:"duration"`
}

// Payload implements Event.
func (e VoiceSessionEndedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"member_id": string(e.MemberID),
		"duration":  e.Duration.String(),
	}
}

// NewVoiceSessionEndedEvent creates a new VoiceSessionEndedEvent.
func NewVoiceSessionEndedEvent(id string, memberID MemberID, duration time.Duration, at time.Time) VoiceSessionEndedEvent {
	return VoiceSessionEndedEvent{
		BaseEvent: NewBaseEvent(id, EventVoiceSessionEnded, memberID, at),
		Duration:  duration,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
