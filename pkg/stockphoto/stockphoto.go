// Package stockphoto is a thin Pexels search client. It maps search
// results to article image assets; quota handling and caching belong to
// the caller.
package stockphoto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingAPIKey  = errors.New("stockphoto: missing API key")
	ErrEmptyQuery     = errors.New("stockphoto: empty query")
	ErrRequestFailed  = errors.New("stockphoto: request failed")
	ErrInvalidPayload = errors.New("stockphoto: invalid response payload")
)

const (
	defaultBaseURL = "https://api.pexels.com"
	defaultTimeout = 30 * time.Second
	maxPerPage     = 80
)

// Photo is one search result.
type Photo struct {
	URL          string
	Alt          string
	Photographer string
	SourceURL    string
}

// Client searches the Pexels photo library.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. Tests use this.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a Pexels client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchResponse struct {
	Photos []struct {
		Alt          string `json:"alt"`
		Photographer string `json:"photographer"`
		URL          string `json:"url"`
		Src          struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// Search returns up to perPage photos matching the query. Results
// missing a usable image URL are dropped.
func (c *Client) Search(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	endpoint := c.baseURL + "/v1/search?query=" + url.QueryEscape(query) +
		"&per_page=" + strconv.Itoa(perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}

	photos := make([]Photo, 0, len(decoded.Photos))
	for _, p := range decoded.Photos {
		if p.Src.Large == "" {
			continue
		}
		photos = append(photos, Photo{
			URL:          p.Src.Large,
			Alt:          p.Alt,
			Photographer: p.Photographer,
			SourceURL:    p.URL,
		})
	}
	return photos, nil
}
