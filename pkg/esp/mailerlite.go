package esp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const mailerliteBaseURL = "https://connect.mailerlite.com"

// MailerLite adapts the MailerLite "new" API. List membership is expressed
// through groups; auth is a bearer token.
type MailerLite struct {
	baseProvider
}

// NewMailerLite creates the MailerLite adapter.
func NewMailerLite(opts ...Option) *MailerLite {
	return &MailerLite{
		baseProvider: newBaseProvider(Descriptor{
			Name:         "mailerlite",
			DisplayName:  "MailerLite",
			Description:  "MailerLite subscriber groups and campaign email",
			IconURL:      "/static/icons/mailerlite.svg",
			ConfigFields: standardConfigFields(),
		}, mailerliteBaseURL, opts...),
	}
}

func (p *MailerLite) AddSubscriber(ctx context.Context, input SubscriberInput) SubscribeResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return SubscribeResult{Error: errNotConfigured}
	}
	input = input.Normalize()

	payload := map[string]any{
		"email": input.Email,
		"fields": map[string]string{
			"name":      input.FirstName,
			"last_name": input.LastName,
		},
	}
	groupID := input.ListID
	if groupID == "" {
		groupID = cfg.ListID
	}
	if groupID != "" {
		payload["groups"] = []string{groupID}
	}

	status, body, err := p.doJSON(ctx, http.MethodPost, "/api/subscribers", p.authHeader(cfg), payload)
	if err != nil {
		return SubscribeResult{Error: fmt.Sprintf("mailerlite request failed: %v", err)}
	}
	if !is2xx(status) {
		return SubscribeResult{Error: parseMailerLiteError(status, body)}
	}
	return SubscribeResult{Success: true, Message: "subscriber upserted"}
}

func (p *MailerLite) SendEmail(ctx context.Context, input SendEmailInput) SendResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return SendResult{Error: errNotConfigured}
	}

	// MailerLite has no standalone transactional endpoint in the connect
	// API; a single-recipient campaign draft is created and scheduled for
	// immediate delivery.
	payload := map[string]any{
		"name": "transactional: " + input.Subject,
		"type": "regular",
		"emails": []map[string]any{{
			"subject":   input.Subject,
			"from_name": cfg.SenderName,
			"from":      cfg.SenderEmail,
			"content":   input.HTML,
		}},
		"recipients": map[string]any{"emails": []string{input.To}},
	}

	status, body, err := p.doJSON(ctx, http.MethodPost, "/api/campaigns", p.authHeader(cfg), payload)
	if err != nil {
		return SendResult{Error: fmt.Sprintf("mailerlite request failed: %v", err)}
	}
	if !is2xx(status) {
		return SendResult{Error: parseMailerLiteError(status, body)}
	}

	var created struct {
		Data struct {
			ID json.Number `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &created)
	return SendResult{Success: true, EmailID: created.Data.ID.String()}
}

func (p *MailerLite) TestConnection(ctx context.Context) TestResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return TestResult{Message: errNotConfigured}
	}

	status, body, err := p.doJSON(ctx, http.MethodGet, "/api/groups", p.authHeader(cfg), nil)
	if err != nil {
		return TestResult{Message: fmt.Sprintf("mailerlite request failed: %v", err)}
	}
	if !is2xx(status) {
		return TestResult{Message: parseMailerLiteError(status, body)}
	}
	return TestResult{Success: true, Message: "MailerLite connection OK"}
}

func (p *MailerLite) authHeader(cfg Config) map[string]string {
	return map[string]string{"Authorization": "Bearer " + cfg.APIKey}
}

// parseMailerLiteError extracts the message and per-field errors from
// MailerLite's envelope: {"message":"...","errors":{"field":["..."]}}.
func parseMailerLiteError(status int, body []byte) string {
	var envelope struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		parts := []string{envelope.Message}
		for field, messages := range envelope.Errors {
			if len(messages) > 0 {
				parts = append(parts, field+": "+messages[0])
			}
		}
		return fmt.Sprintf("mailerlite: %s (status %d)", strings.Join(parts, "; "), status)
	}
	return fmt.Sprintf("mailerlite: unexpected status %d", status)
}
