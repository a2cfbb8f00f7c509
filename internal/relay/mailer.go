package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/grupoquokka/diagnostico/internal/resilience"
)

// DefaultResendURL is the Resend API base URL.
const DefaultResendURL = "https://api.resend.com"

// Mailer delivers a composed message to the email provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ProviderError reports a rejection by the email provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("email provider error: status %d, body: %s", e.StatusCode, e.Body)
}

// ResendMailer sends through the Resend REST API.
type ResendMailer struct {
	apiKey  string
	baseURL string
	client  *resilience.Client
}

// NewResendMailer creates a Resend mailer. An empty baseURL uses
// DefaultResendURL; a nil client gets a pooled client with its own breaker.
func NewResendMailer(apiKey, baseURL string, client *resilience.Client) *ResendMailer {
	if baseURL == "" {
		baseURL = DefaultResendURL
	}
	if client == nil {
		client = resilience.NewClient(resilience.DefaultClientConfig(), resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
		}))
	}
	return &ResendMailer{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo []string `json:"reply_to,omitempty"`
}

// Send implements Mailer.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	req := resendEmail{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		req.ReplyTo = []string{msg.ReplyTo}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	resp, err := m.client.Do(ctx, http.MethodPost, m.baseURL+"/emails", map[string]string{
		"Authorization": "Bearer " + m.apiKey,
		"Content-Type":  "application/json",
		"User-Agent":    "diagnostico-relay/1.0",
	}, body)
	if err != nil {
		return fmt.Errorf("failed to reach email provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ProviderError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	return nil
}

// LogMailer logs messages instead of sending them. It stands in for the
// provider when no API key is configured.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(ctx context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Email not sent, no provider configured",
		"to", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
	)
	return nil
}
