package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/domain/shared"
)

// WebhookSender delivers rendered notifications to the platform connector,
// which posts them into the actual chat channels.
type WebhookSender struct {
	url    string
	client *http.Client
}

// NewWebhookSender creates a WebhookSender targeting the connector URL.
func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send implements Sender.
func (s *WebhookSender) Send(ctx context.Context, channel shared.ChannelID, text string) error {
	body, err := json.Marshal(map[string]string{
		"channel": channel.String(),
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("connector rejected notification: status %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes notifications to the log. Used in development when no
// connector is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, channel shared.ChannelID, text string) error {
	s.logger.Info("notification", "channel", channel, "text", text)
	return nil
}
