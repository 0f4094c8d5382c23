package esp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

const brevoBaseURL = "https://api.brevo.com"

// Brevo adapts the Brevo (ex-Sendinblue) v3 API. List membership uses
// integer list IDs; auth is an api-key header rather than a bearer token.
type Brevo struct {
	baseProvider
}

// NewBrevo creates the Brevo adapter.
func NewBrevo(opts ...Option) *Brevo {
	return &Brevo{
		baseProvider: newBaseProvider(Descriptor{
			Name:         "brevo",
			DisplayName:  "Brevo",
			Description:  "Brevo contact lists and transactional SMTP API",
			IconURL:      "/static/icons/brevo.svg",
			ConfigFields: standardConfigFields(),
		}, brevoBaseURL, opts...),
	}
}

func (p *Brevo) AddSubscriber(ctx context.Context, input SubscriberInput) SubscribeResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return SubscribeResult{Error: errNotConfigured}
	}
	input = input.Normalize()

	payload := map[string]any{
		"email":         input.Email,
		"updateEnabled": true,
		"attributes": map[string]string{
			"FIRSTNAME": input.FirstName,
			"LASTNAME":  input.LastName,
		},
	}
	listID := input.ListID
	if listID == "" {
		listID = cfg.ListID
	}
	if listID != "" {
		if id, err := strconv.Atoi(listID); err == nil {
			payload["listIds"] = []int{id}
		} else {
			return SubscribeResult{Error: fmt.Sprintf("brevo: list ID %q is not numeric", listID)}
		}
	}

	status, body, err := p.doJSON(ctx, http.MethodPost, "/v3/contacts", p.authHeader(cfg), payload)
	if err != nil {
		return SubscribeResult{Error: fmt.Sprintf("brevo request failed: %v", err)}
	}
	if !is2xx(status) {
		return SubscribeResult{Error: parseBrevoError(status, body)}
	}
	return SubscribeResult{Success: true, Message: "contact created"}
}

func (p *Brevo) SendEmail(ctx context.Context, input SendEmailInput) SendResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return SendResult{Error: errNotConfigured}
	}

	payload := map[string]any{
		"sender": map[string]string{
			"email": cfg.SenderEmail,
			"name":  cfg.SenderName,
		},
		"to":          []map[string]string{{"email": input.To}},
		"subject":     input.Subject,
		"htmlContent": input.HTML,
	}
	if input.Text != "" {
		payload["textContent"] = input.Text
	}
	if cfg.ReplyTo != "" {
		payload["replyTo"] = map[string]string{"email": cfg.ReplyTo}
	}

	status, body, err := p.doJSON(ctx, http.MethodPost, "/v3/smtp/email", p.authHeader(cfg), payload)
	if err != nil {
		return SendResult{Error: fmt.Sprintf("brevo request failed: %v", err)}
	}
	if !is2xx(status) {
		return SendResult{Error: parseBrevoError(status, body)}
	}

	var created struct {
		MessageID string `json:"messageId"`
	}
	_ = json.Unmarshal(body, &created)
	return SendResult{Success: true, EmailID: created.MessageID}
}

func (p *Brevo) TestConnection(ctx context.Context) TestResult {
	cfg := p.Config()
	if cfg.APIKey == "" {
		return TestResult{Message: errNotConfigured}
	}

	status, body, err := p.doJSON(ctx, http.MethodGet, "/v3/contacts/lists", p.authHeader(cfg), nil)
	if err != nil {
		return TestResult{Message: fmt.Sprintf("brevo request failed: %v", err)}
	}
	if !is2xx(status) {
		return TestResult{Message: parseBrevoError(status, body)}
	}
	return TestResult{Success: true, Message: "Brevo connection OK"}
}

func (p *Brevo) authHeader(cfg Config) map[string]string {
	return map[string]string{"api-key": cfg.APIKey}
}

// parseBrevoError extracts Brevo's error envelope: {"code":"...","message":"..."}.
func parseBrevoError(status int, body []byte) string {
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		if envelope.Code != "" {
			return fmt.Sprintf("brevo: %s: %s (status %d)", envelope.Code, envelope.Message, status)
		}
		return fmt.Sprintf("brevo: %s (status %d)", envelope.Message, status)
	}
	return fmt.Sprintf("brevo: unexpected status %d", status)
}
