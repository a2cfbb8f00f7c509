package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/grupoquokka/diagnostico/internal/resilience"
)

// RelayError reports a non-success response from the relay.
type RelayError struct {
	StatusCode int
	Body       string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay responded %d: %s", e.StatusCode, e.Body)
}

// HTTPRelay posts payloads as JSON to a relay URL.
type HTTPRelay struct {
	url    string
	client *resilience.Client
}

// NewHTTPRelay creates a relay client for url. A nil client gets the default
// pooled client.
func NewHTTPRelay(url string, client *resilience.Client) *HTTPRelay {
	if client == nil {
		client = resilience.NewClient(resilience.DefaultClientConfig(), nil)
	}
	return &HTTPRelay{url: url, client: client}
}

type relayResponse struct {
	OK bool `json:"ok"`
}

// Send implements Relay.
func (r *HTTPRelay) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	resp, err := r.client.Do(ctx, http.MethodPost, r.url, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}, body)
	if err != nil {
		return fmt.Errorf("failed to reach relay: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RelayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out relayResponse
	if err := json.Unmarshal(raw, &out); err != nil || !out.OK {
		return &RelayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return nil
}
