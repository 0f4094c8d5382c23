package tracking

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLinkNotFound  = errors.New("tracked link not found")
	ErrDuplicateCode = errors.New("link code already in use")
)

// Link is a short tracked redirect, shared in emails and social posts so
// clicks can be attributed to a campaign.
type Link struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	TargetURL string    `json:"target_url"`
	Campaign  string    `json:"campaign,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Click is one recorded visit through a tracked link.
type Click struct {
	ID          uuid.UUID `json:"id"`
	LinkID      uuid.UUID `json:"link_id"`
	IP          string    `json:"ip,omitempty"`
	Device      string    `json:"device,omitempty"`
	Browser     string    `json:"browser,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats aggregates the clicks of one link for the admin panel.
type Stats struct {
	TotalClicks int            `json:"total_clicks"`
	ByDevice    map[string]int `json:"by_device"`
	ByBrowser   map[string]int `json:"by_browser"`
	LastClickAt *time.Time     `json:"last_click_at,omitempty"`
}

// NewCode generates an 8-character URL-safe link code.
func NewCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken; fall back to a uuid fragment.
		return uuid.NewString()[:8]
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
