package esp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const omnisendBaseURL = "https://api.omnisend.com"

// Omnisend adapts the Omnisend v5 API using an X-API-KEY header.
//
// The upstream API offers no list-discovery endpoint we integrate with, so
// TestConnection probes the contacts resource instead and list metadata in
// the descriptor is a static placeholder. The adapter is incomplete in that
// regard and should not be assumed feature-complete.
type Omnisend struct {
	baseProvider
}

// NewOmnisend creates the Omnisend adapter.
func NewOmnisend(opts ...Option) *Omnisend {
	return &Omnisend{
		baseProvider: newBaseProvider(Descriptor{
			Name:        "omnisend",
			DisplayName: "Omnisend",
			Description: "Omnisend contacts API (list discovery not supported)",
			IconURL:     "/static/icons/omnisend.svg",
			ConfigFields: []ConfigField{
				{Key: "api_key", Label: "API key", Required: true, Secret: true},
				{Key: "sender_email", Label: "Default sender email"},
				{Key: "sender_name", Label: "Default sender name"},
			},
		}, omnisendBaseURL, opts...),
	}
}

func (p *Omnisend) AddSubscriber(ctx context.Context, input SubscriberInput) SubscribeResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return SubscribeResult{Error: errNotConfigured}
	}
	input = input.Normalize()

	payload := map[string]any{
		"identifiers": []map[string]any{{
			"type":     "email",
			"id":       input.Email,
			"channels": map[string]any{"email": map[string]any{"status": "subscribed"}},
		}},
		"firstName": input.FirstName,
		"lastName":  input.LastName,
	}
	if len(input.Tags) > 0 {
		payload["tags"] = input.Tags
	}

	status, body, err := p.doJSON(ctx, http.MethodPost, "/v5/contacts", p.authHeader(cfg), payload)
	if err != nil {
		return SubscribeResult{Error: fmt.Sprintf("omnisend request failed: %v", err)}
	}
	if !is2xx(status) {
		return SubscribeResult{Error: parseOmnisendError(status, body)}
	}
	return SubscribeResult{Success: true, Message: "contact created"}
}

// SendEmail is not supported by the Omnisend integration; transactional
// delivery falls back to the configured transactional mailer.
func (p *Omnisend) SendEmail(ctx context.Context, input SendEmailInput) SendResult {
	return SendResult{Error: "omnisend: transactional email is not supported by this integration"}
}

func (p *Omnisend) TestConnection(ctx context.Context) TestResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return TestResult{Message: errNotConfigured}
	}

	status, body, err := p.doJSON(ctx, http.MethodGet, "/v5/contacts?limit=1", p.authHeader(cfg), nil)
	if err != nil {
		return TestResult{Message: fmt.Sprintf("omnisend request failed: %v", err)}
	}
	if !is2xx(status) {
		return TestResult{Message: parseOmnisendError(status, body)}
	}
	return TestResult{Success: true, Message: "Omnisend connection OK"}
}

func (p *Omnisend) authHeader(cfg Config) map[string]string {
	return map[string]string{"X-API-KEY": cfg.APIKey}
}

// parseOmnisendError extracts Omnisend's envelope, which uses "error" on
// some endpoints and "message" on others.
func parseOmnisendError(status int, body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error != "":
			return fmt.Sprintf("omnisend: %s (status %d)", envelope.Error, status)
		case envelope.Message != "":
			return fmt.Sprintf("omnisend: %s (status %d)", envelope.Message, status)
		}
	}
	return fmt.Sprintf("omnisend: unexpected status %d", status)
}
