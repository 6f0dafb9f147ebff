package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/policy"
)

// Message is one delivery attempt as handed to a Sender.
type Message struct {
	ID        string          `json:"id"`
	Channel   policy.Channel  `json:"channel,omitempty"`
	Target    string          `json:"target,omitempty"`
	Broadcast bool            `json:"broadcast,omitempty"`
	Payload   effects.Payload `json:"payload"`
}

// Sender delivers a message to one provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// WebhookSender POSTs messages as JSON to a fixed URL.
type WebhookSender struct {
	url    string
	client *http.Client
}

// NewWebhookSender creates a sender for url. A nil client uses http.DefaultClient;
// the dispatcher bounds each call with its own timeout.
func NewWebhookSender(url string, client *http.Client) *WebhookSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSender{url: url, client: client}
}

// Send posts msg and treats any non-2xx response as a failure.
func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", msg.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

// LogSender writes messages to the log. Used for channels with no provider configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		zap.String("dispatch_id", msg.ID),
		zap.String("channel", string(msg.Channel)),
		zap.String("target", msg.Target),
		zap.Bool("broadcast", msg.Broadcast),
		zap.String("tenant_id", msg.Payload.TenantID),
		zap.String("request_id", msg.Payload.RequestID),
		zap.String("stage", string(msg.Payload.Stage)),
		zap.String("message", msg.Payload.Message),
		zap.Bool("urgent", msg.Payload.Urgent),
		zap.Bool("sound", msg.Payload.Sound),
	)
	return nil
}
