package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

const sendTimeout = 10 * time.Second

// Sender posts a rendered message to a platform channel.
type Sender interface {
	Send(ctx context.Context, channel shared.ChannelID, text string) error
}

// Notifier renders notification events into messages on the configured
// channels. Delivery is best effort: a failed send is logged, never retried
// against the state machine.
type Notifier struct {
	manager *guildstate.Manager
	sender  Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(manager *guildstate.Manager, sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{manager: manager, sender: sender, logger: logger}
}

// Register subscribes the notifier to every outward-facing event type.
func (n *Notifier) Register(bus shared.EventSubscriber) error {
	for _, eventType := range []shared.EventType{
		shared.EventChatGrant,
		shared.EventVoiceGrant,
		shared.EventApplicationSubmitted,
		shared.EventApplicationDecided,
		shared.EventPanicAlert,
	} {
		if err := bus.Subscribe(eventType, n.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle renders one event and posts it. Unconfigured destination channels
// suppress the notification silently.
func (n *Notifier) Handle(event shared.Event) error {
	settings := n.currentSettings()

	var channel shared.ChannelID
	var text string

	switch e := event.(type) {
	case shared.ChatGrantEvent:
		channel = settings.XPLogChannel
		text = fmt.Sprintf("<@%s> earned %d XP for chat activity (%d messages, balance %d)",
			e.MemberID, e.Amount, e.MessageCount, e.NewBalance)

	case shared.VoiceGrantEvent:
		channel = settings.XPLogChannel
		text = fmt.Sprintf("<@%s> earned %d XP for voice activity (in voice for %s, balance %d)",
			e.MemberID, e.Amount, e.SessionFor, e.NewBalance)

	case shared.ApplicationSubmittedEvent:
		channel = settings.ApplicationChannel
		text = fmt.Sprintf("<@%s> applied for **%s** (%d / %d XP). High-rank members: approve or deny.",
			e.MemberID, e.RoleName, e.Balance, e.Threshold)

	case shared.ApplicationDecidedEvent:
		channel = settings.InfoLogChannel
		verdict := "denied"
		if e.Approved {
			verdict = "approved"
		}
		text = fmt.Sprintf("Application from <@%s> for **%s** was %s by <@%s>",
			e.MemberID, e.RoleName, verdict, e.DecidedBy)

	case shared.PanicAlertEvent:
		channel = e.AlertChannel
		text = fmt.Sprintf("<@&%s> PANIC raised by <@%s> in <#%s>",
			e.ResponderRole, e.MemberID, e.RaisedIn)

	default:
		return nil
	}

	if !channel.IsValid() {
		n.logger.Debug("notification suppressed, channel not configured",
			"event_type", event.EventType())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := n.sender.Send(ctx, channel, text); err != nil {
		n.logger.Warn("notification send failed",
			"event_type", event.EventType(),
			"channel", channel,
			"error", err,
		)
	}
	return nil
}

func (n *Notifier) currentSettings() guildstate.Settings {
	var s guildstate.Settings
	_ = n.manager.View(func(state *guildstate.State) error {
		s = state.Settings
		return nil
	})
	return s
}
