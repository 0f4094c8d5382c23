package blog

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia/pkg/enhance"
)

// Post statuses. Only published posts appear on the public API.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicateSlug = errors.New("slug already in use")
)

// Post is a blog article, either hand-written in the admin panel or
// produced by the generation pipeline.
type Post struct {
	ID          uuid.UUID       `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Keyword     string          `json:"keyword,omitempty"`
	HTML        string          `json:"html"`
	Excerpt     string          `json:"excerpt,omitempty"`
	CoverURL    string          `json:"cover_url,omitempty"`
	Images      []enhance.Image `json:"images,omitempty"`
	Schema      map[string]any  `json:"schema,omitempty"`
	Status      string          `json:"status"`
	Generated   bool            `json:"generated"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Summary is the list-view shape: everything but the article body.
type Summary struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Keyword     string     `json:"keyword,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	Status      string     `json:"status"`
	Generated   bool       `json:"generated"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (p Post) summary() Summary {
	return Summary{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Keyword:     p.Keyword,
		Excerpt:     p.Excerpt,
		CoverURL:    p.CoverURL,
		Status:      p.Status,
		Generated:   p.Generated,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
	}
}
