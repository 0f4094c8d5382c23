package enhance

import (
	"encoding/json"
	"strings"
	"time"
)

// schemaMarker makes InsertArticleSchema idempotent.
const schemaMarker = `application/ld+json`

// ArticleMeta describes the post fields surfaced in structured data.
type ArticleMeta struct {
	Title       string
	Description string
	Slug        string
	Keyword     string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// BuildArticleSchema builds a schema.org Article JSON-LD object for the
// post and its embedded images.
func BuildArticleSchema(meta ArticleMeta, images []Image) map[string]any {
	imageURLs := make([]string, 0, len(images))
	for _, img := range images {
		if img.URL != "" {
			imageURLs = append(imageURLs, img.URL)
		}
	}

	schema := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    meta.Title,
		"description": meta.Description,
		"keywords":    meta.Keyword,
		"url":         "/blog/" + meta.Slug,
		"author": map[string]any{
			"@type": "Organization",
			"name":  "Harmonia",
		},
	}
	if len(imageURLs) > 0 {
		schema["image"] = imageURLs
	}
	if !meta.PublishedAt.IsZero() {
		schema["datePublished"] = meta.PublishedAt.Format(time.RFC3339)
	}
	if !meta.UpdatedAt.IsZero() {
		schema["dateModified"] = meta.UpdatedAt.Format(time.RFC3339)
	}
	return schema
}

// InsertArticleSchema appends the JSON-LD script block to the content.
// Idempotent: content already carrying an ld+json block is returned
// unchanged, as is content for which the schema cannot be serialized.
func InsertArticleSchema(html string, meta ArticleMeta, images []Image) string {
	if strings.Contains(html, schemaMarker) {
		return html
	}

	data, err := json.Marshal(BuildArticleSchema(meta, images))
	if err != nil {
		return html
	}

	return html + "\n<script type=\"application/ld+json\">" + string(data) + "</script>\n"
}
