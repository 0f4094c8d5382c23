package blog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/modules/blog"
	"github.com/harmonia-labs/harmonia/pkg/storage"
)

func seedPost(t *testing.T, repo blog.Repository, slug, status string, createdAt time.Time) *blog.Post {
	t.Helper()
	post := &blog.Post{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     strings.ReplaceAll(slug, "-", " "),
		HTML:      "<h1>" + slug + "</h1><p>body</p>",
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if status == blog.StatusPublished {
		post.PublishedAt = &createdAt
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func decodeData(t *testing.T, r io.Reader, v any) map[string]any {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
		Meta map[string]any  `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(r).Decode(&envelope))
	if v != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, v))
	}
	return envelope.Meta
}

func TestPublicEndpoints(t *testing.T) {
	t.Parallel()

	repo := blog.NewMemoryRepository()
	now := time.Now()
	published := seedPost(t, repo, "sleep-hygiene-guide", blog.StatusPublished, now)
	seedPost(t, repo, "unfinished-draft", blog.StatusDraft, now.Add(time.Minute))

	svc := blog.NewService(repo, nil, nil, nil)
	srv := httptest.NewServer(svc.PublicHandle())
	t.Cleanup(srv.Close)

	t.Run("list shows only published", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summaries []blog.Summary
		meta := decodeData(t, resp.Body, &summaries)
		require.Len(t, summaries, 1)
		assert.Equal(t, "sleep-hygiene-guide", summaries[0].Slug)
		assert.EqualValues(t, 1, meta["total"])
	})

	t.Run("detail by slug", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/sleep-hygiene-guide")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var post blog.Post
		decodeData(t, resp.Body, &post)
		assert.Equal(t, published.ID, post.ID)
		assert.Contains(t, post.HTML, "<p>body</p>")
	})

	t.Run("draft is not reachable", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/unfinished-draft")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown slug is 404", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminCRUD(t *testing.T) {
	t.Parallel()

	repo := blog.NewMemoryRepository()
	svc := blog.NewService(repo, nil, nil, nil)
	srv := httptest.NewServer(svc.Handle())
	t.Cleanup(srv.Close)

	var created blog.Post

	t.Run("create derives slug from title", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/", "application/json",
			strings.NewReader(`{"title":"Why Morning Light Matters","html":"<p>light</p>","status":"published"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		decodeData(t, resp.Body, &created)
		assert.Equal(t, "why-morning-light-matters", created.Slug)
		assert.NotNil(t, created.PublishedAt)
	})

	t.Run("create without title fails validation", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/", "application/json",
			strings.NewReader(`{"html":"<p>x</p>"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("update changes status and body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/"+created.ID.String(),
			strings.NewReader(`{"status":"draft","excerpt":"short version"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated blog.Post
		decodeData(t, resp.Body, &updated)
		assert.Equal(t, blog.StatusDraft, updated.Status)
		assert.Equal(t, "short version", updated.Excerpt)
	})

	t.Run("get by id", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/" + created.ID.String())
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete then 404", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/"+created.ID.String(), nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		getResp, err := http.Get(srv.URL + "/" + created.ID.String())
		require.NoError(t, err)
		defer getResp.Body.Close()
		assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
	})
}

func TestUniqueSlug(t *testing.T) {
	t.Parallel()

	repo := blog.NewMemoryRepository()
	svc := blog.NewService(repo, nil, nil, nil)
	ctx := context.Background()

	first, err := svc.UniqueSlug(ctx, "Morning Light")
	require.NoError(t, err)
	assert.Equal(t, "morning-light", first)

	seedPost(t, repo, "morning-light", blog.StatusDraft, time.Now())

	second, err := svc.UniqueSlug(ctx, "Morning Light")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "morning-light"))
}

func TestUploadCover(t *testing.T) {
	t.Parallel()

	repo := blog.NewMemoryRepository()
	post := seedPost(t, repo, "with-cover", blog.StatusPublished, time.Now())

	files, err := storage.NewLocalStorage(t.TempDir(), "https://cdn.example.com")
	require.NoError(t, err)

	svc := blog.NewService(repo, files, nil, nil)
	srv := httptest.NewServer(svc.Handle())
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="cover"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/"+post.ID.String()+"/cover", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated blog.Post
	decodeData(t, resp.Body, &updated)
	assert.Contains(t, updated.CoverURL, "https://cdn.example.com")
	assert.Contains(t, updated.CoverURL, "cover.png")

	stored, err := repo.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.CoverURL, stored.CoverURL)
}
