package esp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// maxResponseBody caps how much of an upstream response is read when
// extracting error envelopes.
const maxResponseBody = 1 << 20 // 1 MB

// baseProvider carries the state shared by every concrete adapter: the
// immutable descriptor, the mutex-guarded mutable config, and the HTTP
// client used for outbound calls.
type baseProvider struct {
	descriptor Descriptor
	baseURL    string
	client     *http.Client

	mu  sync.RWMutex
	cfg Config
}

func (b *baseProvider) Descriptor() Descriptor {
	return b.descriptor
}

func (b *baseProvider) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

func (b *baseProvider) Configure(cfg Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = b.cfg.merge(cfg)
}

// doJSON performs an outbound JSON API call and returns the raw status and
// body. Transport-level failures surface as the returned error; HTTP-level
// failures are left to the caller's per-service envelope parsing.
func (b *baseProvider) doJSON(ctx context.Context, method, path string, headers map[string]string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
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

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

// Option configures a concrete provider adapter.
type Option func(*baseProvider)

// WithHTTPClient overrides the HTTP client used for outbound calls.
func WithHTTPClient(client *http.Client) Option {
	return func(b *baseProvider) {
		if client != nil {
			b.client = client
		}
	}
}

// WithBaseURL overrides the service base URL. Used by tests and
// self-hosted deployments.
func WithBaseURL(url string) Option {
	return func(b *baseProvider) {
		if url != "" {
			b.baseURL = url
		}
	}
}

func newBaseProvider(descriptor Descriptor, baseURL string, opts ...Option) baseProvider {
	b := baseProvider{
		descriptor: descriptor,
		baseURL:    baseURL,
		client:     &http.Client{},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// standardConfigFields is the configuration surface shared by the built-in
// adapters.
func standardConfigFields() []ConfigField {
	return []ConfigField{
		{Key: "api_key", Label: "API key", Required: true, Secret: true},
		{Key: "sender_email", Label: "Default sender email", Required: true},
		{Key: "sender_name", Label: "Default sender name"},
		{Key: "reply_to", Label: "Reply-to address"},
		{Key: "list_id", Label: "Default list/group ID"},
	}
}

const errNotConfigured = "provider not configured: missing API key"
