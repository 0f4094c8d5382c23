package esp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const sendgridBaseURL = "https://api.sendgrid.com"

// SendGrid adapts the SendGrid v3 API: marketing contacts for list
// subscriptions and the mail/send endpoint for transactional email.
// Auth is a bearer token.
type SendGrid struct {
	baseProvider
}

// NewSendGrid creates the SendGrid adapter.
func NewSendGrid(opts ...Option) *SendGrid {
	return &SendGrid{
		baseProvider: newBaseProvider(Descriptor{
			Name:         "sendgrid",
			DisplayName:  "SendGrid",
			Description:  "Twilio SendGrid marketing contacts and transactional email",
			IconURL:      "/static/icons/sendgrid.svg",
			ConfigFields: standardConfigFields(),
		}, sendgridBaseURL, opts...),
	}
}

func (p *SendGrid) AddSubscriber(ctx context.Context, input SubscriberInput) SubscribeResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return SubscribeResult{Error: errNotConfigured}
	}
	input = input.Normalize()

	payload := map[string]any{
		"contacts": []map[string]any{{
			"email":      input.Email,
			"first_name": input.FirstName,
			"last_name":  input.LastName,
		}},
	}
	listID := input.ListID
	if listID == "" {
		listID = cfg.ListID
	}
	if listID != "" {
		payload["list_ids"] = []string{listID}
	}

	status, body, err := p.doJSON(ctx, http.MethodPut, "/v3/marketing/contacts", p.authHeader(cfg), payload)
	if err != nil {
		return SubscribeResult{Error: fmt.Sprintf("sendgrid request failed: %v", err)}
	}
	if !is2xx(status) {
		return SubscribeResult{Error: parseSendGridError(status, body)}
	}
	return SubscribeResult{Success: true, Message: "contact queued for import"}
}

func (p *SendGrid) SendEmail(ctx context.Context, input SendEmailInput) SendResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return SendResult{Error: errNotConfigured}
	}

	content := []map[string]string{}
	if input.Text != "" {
		content = append(content, map[string]string{"type": "text/plain", "value": input.Text})
	}
	if input.HTML != "" {
		content = append(content, map[string]string{"type": "text/html", "value": input.HTML})
	}

	payload := map[string]any{
		"personalizations": []map[string]any{{
			"to": []map[string]string{{"email": input.To}},
		}},
		"from": map[string]string{
			"email": cfg.SenderEmail,
			"name":  cfg.SenderName,
		},
		"subject": input.Subject,
		"content": content,
	}
	if cfg.ReplyTo != "" {
		payload["reply_to"] = map[string]string{"email": cfg.ReplyTo}
	}

	status, body, err := p.doJSON(ctx, http.MethodPost, "/v3/mail/send", p.authHeader(cfg), payload)
	if err != nil {
		return SendResult{Error: fmt.Sprintf("sendgrid request failed: %v", err)}
	}
	if !is2xx(status) {
		return SendResult{Error: parseSendGridError(status, body)}
	}
	return SendResult{Success: true}
}

func (p *SendGrid) TestConnection(ctx context.Context) TestResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return TestResult{Message: errNotConfigured}
	}

	status, body, err := p.doJSON(ctx, http.MethodGet, "/v3/marketing/lists", p.authHeader(cfg), nil)
	if err != nil {
		return TestResult{Message: fmt.Sprintf("sendgrid request failed: %v", err)}
	}
	if !is2xx(status) {
		return TestResult{Message: parseSendGridError(status, body)}
	}
	return TestResult{Success: true, Message: "SendGrid connection OK"}
}

func (p *SendGrid) authHeader(cfg Config) map[string]string {
	return map[string]string{"Authorization": "Bearer " + cfg.APIKey}
}

// parseSendGridError extracts the messages from SendGrid's error envelope:
// {"errors":[{"message":"...","field":...}]}.
func parseSendGridError(status int, body []byte) string {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			if e.Message != "" {
				messages = append(messages, e.Message)
			}
		}
		if len(messages) > 0 {
			return fmt.Sprintf("sendgrid: %s (status %d)", strings.Join(messages, "; "), status)
		}
	}
	return fmt.Sprintf("sendgrid: unexpected status %d", status)
}
