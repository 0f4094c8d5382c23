package esp

import (
	"context"
	"strings"
)

// ConfigField describes a single admin-editable configuration input of a
// provider. Secret fields are masked in admin API responses.
type ConfigField struct {
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label" yaml:"label"`
	Required bool   `json:"required" yaml:"required"`
	Secret   bool   `json:"secret" yaml:"secret"`
}

// Descriptor identifies a provider and declares its configuration surface.
// Name is the unique lowercase registry key. Descriptors are immutable once
// registered.
type Descriptor struct {
	Name         string        `json:"name" yaml:"name"`
	DisplayName  string        `json:"display_name" yaml:"display_name"`
	Description  string        `json:"description" yaml:"description"`
	IconURL      string        `json:"icon_url" yaml:"icon_url"`
	ConfigFields []ConfigField `json:"config_fields" yaml:"config_fields"`
}

// Config holds per-provider runtime configuration. Mutations are
// last-write-wins: Configure merges non-empty fields over the previous
// value, there is no versioning.
type Config struct {
	APIKey      string `json:"api_key"`
	SenderEmail string `json:"sender_email"`
	SenderName  string `json:"sender_name"`
	ReplyTo     string `json:"reply_to"`
	ListID      string `json:"list_id"`
	Endpoint    string `json:"endpoint"`
}

// merge returns c with non-empty fields of in overwriting the existing ones.
func (c Config) merge(in Config) Config {
	if in.APIKey != "" {
		c.APIKey = in.APIKey
	}
	if in.SenderEmail != "" {
		c.SenderEmail = in.SenderEmail
	}
	if in.SenderName != "" {
		c.SenderName = in.SenderName
	}
	if in.ReplyTo != "" {
		c.ReplyTo = in.ReplyTo
	}
	if in.ListID != "" {
		c.ListID = in.ListID
	}
	if in.Endpoint != "" {
		c.Endpoint = in.Endpoint
	}
	return c
}

// SubscriberInput is the normalized shape every provider's add-subscriber
// call accepts. When only Name is supplied, Normalize derives FirstName and
// LastName by splitting on the first space.
type SubscriberInput struct {
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags,omitempty"`
	ListID    string   `json:"list_id,omitempty"`
}

// Normalize fills FirstName/LastName from Name when only the full name is
// supplied, and backfills Name from the parts when only those are set.
func (in SubscriberInput) Normalize() SubscriberInput {
	if in.FirstName == "" && in.Name != "" {
		first, last, found := strings.Cut(strings.TrimSpace(in.Name), " ")
		in.FirstName = first
		if found && in.LastName == "" {
			in.LastName = strings.TrimSpace(last)
		}
	}
	if in.Name == "" {
		in.Name = strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName))
	}
	return in
}

// SendEmailInput carries a single transactional email.
type SendEmailInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// SubscribeResult is the uniform outcome of an add-subscriber call.
type SubscribeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendResult is the uniform outcome of a transactional send.
type SendResult struct {
	Success bool   `json:"success"`
	EmailID string `json:"email_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TestResult is the uniform outcome of a connection test.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Provider is the capability contract every email-list backend satisfies.
//
// Capability methods must not return Go errors or panic: any failure is
// reported through the result's Error string so callers can log and
// continue.
type Provider interface {
	Descriptor() Descriptor
	Config() Config
	Configure(cfg Config)

	AddSubscriber(ctx context.Context, input SubscriberInput) SubscribeResult
	SendEmail(ctx context.Context, input SendEmailInput) SendResult
	TestConnection(ctx context.Context) TestResult
}

// Normalize canonicalizes a provider name for registry lookups.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
