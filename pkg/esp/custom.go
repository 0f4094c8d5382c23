package esp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CustomWebhook is an admin-registered provider that posts the normalized
// subscriber/email payloads as JSON to a configured endpoint with bearer
// auth. It lets the admin bolt on any webhook-style ESP without a code
// change; the descriptor comes from the admin or a catalog file.
type CustomWebhook struct {
	baseProvider
}

// NewCustomWebhook creates a webhook-backed provider from a descriptor.
// The target endpoint is taken from Config.Endpoint at call time.
func NewCustomWebhook(descriptor Descriptor, opts ...Option) *CustomWebhook {
	if len(descriptor.ConfigFields) == 0 {
		descriptor.ConfigFields = []ConfigField{
			{Key: "endpoint", Label: "Webhook endpoint URL", Required: true},
			{Key: "api_key", Label: "Bearer token", Secret: true},
			{Key: "sender_email", Label: "Default sender email"},
			{Key: "list_id", Label: "Default list ID"},
		}
	}
	return &CustomWebhook{
		baseProvider: newBaseProvider(descriptor, "", opts...),
	}
}

func (p *CustomWebhook) AddSubscriber(ctx context.Context, input SubscriberInput) SubscribeResult {
	cfg := p.Config()
	if cfg.Endpoint == "" {
		return SubscribeResult{Error: "custom provider not configured: missing endpoint"}
	}
	input = input.Normalize()
	if input.ListID == "" {
		input.ListID = cfg.ListID
	}

	status, body, err := p.post(ctx, cfg, "/subscribers", input)
	if err != nil {
		return SubscribeResult{Error: fmt.Sprintf("%s request failed: %v", p.descriptor.Name, err)}
	}
	if !is2xx(status) {
		return SubscribeResult{Error: p.parseError(status, body)}
	}
	return SubscribeResult{Success: true, Message: "subscriber accepted"}
}

func (p *CustomWebhook) SendEmail(ctx context.Context, input SendEmailInput) SendResult {
	cfg := p.Config()
	if cfg.Endpoint == "" {
		return SendResult{Error: "custom provider not configured: missing endpoint"}
	}

	status, body, err := p.post(ctx, cfg, "/emails", input)
	if err != nil {
		return SendResult{Error: fmt.Sprintf("%s request failed: %v", p.descriptor.Name, err)}
	}
	if !is2xx(status) {
		return SendResult{Error: p.parseError(status, body)}
	}

	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &created)
	return SendResult{Success: true, EmailID: created.ID}
}

func (p *CustomWebhook) TestConnection(ctx context.Context) TestResult {
	cfg := p.Config()
	if cfg.Endpoint == "" {
		return TestResult{Message: "custom provider not configured: missing endpoint"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Endpoint+"/health", nil)
	if err != nil {
		return TestResult{Message: fmt.Sprintf("%s request failed: %v", p.descriptor.Name, err)}
	}
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return TestResult{Message: fmt.Sprintf("%s request failed: %v", p.descriptor.Name, err)}
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return TestResult{Message: fmt.Sprintf("%s: unexpected status %d", p.descriptor.Name, resp.StatusCode)}
	}
	return TestResult{Success: true, Message: "webhook endpoint reachable"}
}

// post builds its own request because the target URL comes from the mutable
// config rather than the adapter's fixed base URL.
func (p *CustomWebhook) post(ctx context.Context, cfg Config, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func (p *CustomWebhook) parseError(status int, body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error != "":
			return fmt.Sprintf("%s: %s (status %d)", p.descriptor.Name, envelope.Error, status)
		case envelope.Message != "":
			return fmt.Sprintf("%s: %s (status %d)", p.descriptor.Name, envelope.Message, status)
		}
	}
	return fmt.Sprintf("%s: unexpected status %d", p.descriptor.Name, status)
}
