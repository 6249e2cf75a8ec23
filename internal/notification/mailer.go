// Package notification provides the outbound mail adapter. Delivery goes
// through the organization's mail gateway; this client only POSTs and
// reports the outcome, retry policy belongs to the gateway.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/application/port"
	"go.uber.org/zap"
)

// Config holds mail gateway configuration
type Config struct {
	GatewayURL string
	APIKey     string
	FromName   string
	FromEmail  string
	Timeout    time.Duration
}

// Mailer sends mail through the HTTP mail gateway
type Mailer struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewMailer creates a new gateway mailer
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Mailer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type sendPayload struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Send delivers one message. The caller decides whether failures matter;
// the workflow engine treats them as best-effort.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendPayload{
		FromName:  m.cfg.FromName,
		FromEmail: m.cfg.FromEmail,
		To:        to,
		Subject:   subject,
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach mail gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Error("Mail gateway rejected message",
			zap.String("to", to),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("mail gateway returned status %d", resp.StatusCode)
	}

	m.logger.Debug("Mail accepted by gateway", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Verify interface compliance
var _ port.NotificationSender = (*Mailer)(nil)
