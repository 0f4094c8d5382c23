package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/pkg/audit"
	"github.com/harmonia-labs/harmonia/pkg/binder"
	"github.com/harmonia-labs/harmonia/pkg/slug"
	"github.com/harmonia-labs/harmonia/pkg/storage"
)

// Service owns post CRUD for the admin panel and the public read-only
// listing. Cover images go through the configured asset storage; when none
// is wired the cover endpoint answers 503.
type Service struct {
	repo         Repository
	files        storage.Storage
	auditLog     audit.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewService(repo Repository, files storage.Storage, auditLog audit.Logger, errorHandler handler.ErrorHandler[handler.Context]) *Service {
	if repo == nil {
		panic("blog: repository is required")
	}
	return &Service{
		repo:         repo,
		files:        files,
		auditLog:     auditLog,
		errorHandler: errorHandler,
	}
}

// Repository exposes the underlying repository for the generation pipeline.
func (s *Service) Repository() Repository {
	return s.repo
}

// UniqueSlug derives a URL slug from the title, appending a random suffix
// when the plain slug is already taken.
func (s *Service) UniqueSlug(ctx context.Context, title string) (string, error) {
	candidate := slug.Make(title, slug.MaxLength(80))
	if candidate == "" {
		candidate = slug.Make(uuid.NewString())
	}

	exists, err := s.repo.SlugExists(ctx, candidate)
	if err != nil {
		return "", err
	}
	if !exists {
		return candidate, nil
	}
	return slug.Make(title, slug.MaxLength(80), slug.WithSuffix(6)), nil
}

// Handle is the admin surface: full CRUD plus cover upload.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.adminList,
		handler.WithBinders[handler.Context, ListRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, CreatePostRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, CreatePostRequest](s.errorHandler),
	))
	r.Get("/{id}", handler.Wrap(s.get,
		handler.WithBinders[handler.Context, PostIDRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, PostIDRequest](s.errorHandler),
	))
	r.Put("/{id}", handler.Wrap(s.update,
		handler.WithBinders[handler.Context, UpdatePostRequest](binder.JSON(), binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, UpdatePostRequest](s.errorHandler),
	))
	r.Delete("/{id}", handler.Wrap(s.delete,
		handler.WithBinders[handler.Context, PostIDRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, PostIDRequest](s.errorHandler),
	))
	r.Post("/{id}/cover", handler.Wrap(s.uploadCover,
		handler.WithBinders[handler.Context, UploadCoverRequest](binder.File(), binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, UploadCoverRequest](s.errorHandler),
	))

	return r
}

// PublicHandle is the unauthenticated read-only surface.
func (s *Service) PublicHandle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.publicList,
		handler.WithBinders[handler.Context, ListRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
	))
	r.Get("/{slug}", handler.Wrap(s.publicGet,
		handler.WithBinders[handler.Context, SlugRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, SlugRequest](s.errorHandler),
	))

	return r
}

type ListRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (s *Service) adminList(ctx handler.Context, req ListRequest) handler.Response {
	summaries, total, err := s.repo.List(ctx, ListFilter{
		Status: strings.ToLower(req.Status),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(summaries, handler.WithJSONMeta(map[string]any{"total": total}))
}

func (s *Service) publicList(ctx handler.Context, req ListRequest) handler.Response {
	summaries, total, err := s.repo.List(ctx, ListFilter{
		Status: StatusPublished,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(summaries, handler.WithJSONMeta(map[string]any{"total": total}))
}

type SlugRequest struct {
	Slug string `path:"slug"`
}

func (s *Service) publicGet(ctx handler.Context, req SlugRequest) handler.Response {
	post, err := s.repo.GetBySlug(ctx, req.Slug)
	if err != nil {
		return postError(err)
	}
	if post.Status != StatusPublished {
		return handler.JSONError(handler.ErrNotFound)
	}
	return handler.JSON(post)
}

type PostIDRequest struct {
	ID uuid.UUID `path:"id"`
}

func (s *Service) get(ctx handler.Context, req PostIDRequest) handler.Response {
	post, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return postError(err)
	}
	return handler.JSON(post)
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Keyword string `json:"keyword"`
	HTML    string `json:"html"`
	Excerpt string `json:"excerpt"`
	Status  string `json:"status"`
}

func (req CreatePostRequest) Validate() error {
	errs := handler.NewValidationError()
	if strings.TrimSpace(req.Title) == "" {
		errs.Add("title", "title is required")
	}
	if strings.TrimSpace(req.HTML) == "" {
		errs.Add("html", "html body is required")
	}
	if req.Status != "" && req.Status != StatusDraft && req.Status != StatusPublished {
		errs.Add("status", fmt.Sprintf("status must be %q or %q", StatusDraft, StatusPublished))
	}
	if !errs.IsEmpty() {
		return errs
	}
	return nil
}

func (s *Service) create(ctx handler.Context, req CreatePostRequest) handler.Response {
	if err := req.Validate(); err != nil {
		return handler.JSONError(err)
	}

	postSlug := slug.Make(req.Slug)
	if postSlug == "" {
		var err error
		postSlug, err = s.UniqueSlug(ctx, req.Title)
		if err != nil {
			return handler.JSONError(err)
		}
	}

	now := time.Now()
	post := &Post{
		ID:        uuid.New(),
		Slug:      postSlug,
		Title:     strings.TrimSpace(req.Title),
		Keyword:   strings.TrimSpace(req.Keyword),
		HTML:      req.HTML,
		Excerpt:   strings.TrimSpace(req.Excerpt),
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post.Status == "" {
		post.Status = StatusDraft
	}
	if post.Status == StatusPublished {
		post.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return postError(err)
	}

	s.logAudit(ctx, "posts.create", post.ID.String(), map[string]any{"slug": post.Slug})
	return handler.JSON(post, handler.WithJSONStatus(http.StatusCreated))
}

type UpdatePostRequest struct {
	ID      uuid.UUID `path:"id" json:"-"`
	Title   *string   `json:"title"`
	Slug    *string   `json:"slug"`
	Keyword *string   `json:"keyword"`
	HTML    *string   `json:"html"`
	Excerpt *string   `json:"excerpt"`
	Status  *string   `json:"status"`
}

func (s *Service) update(ctx handler.Context, req UpdatePostRequest) handler.Response {
	post, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return postError(err)
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil && slug.Make(*req.Slug) != "" {
		post.Slug = slug.Make(*req.Slug)
	}
	if req.Keyword != nil {
		post.Keyword = strings.TrimSpace(*req.Keyword)
	}
	if req.HTML != nil && *req.HTML != "" {
		post.HTML = *req.HTML
	}
	if req.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusDraft:
			post.Status = StatusDraft
		case StatusPublished:
			if post.Status != StatusPublished {
				now := time.Now()
				post.PublishedAt = &now
			}
			post.Status = StatusPublished
		default:
			errs := handler.NewValidationError()
			errs.Add("status", fmt.Sprintf("status must be %q or %q", StatusDraft, StatusPublished))
			return handler.JSONError(errs)
		}
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return postError(err)
	}

	s.logAudit(ctx, "posts.update", post.ID.String(), map[string]any{"slug": post.Slug})
	return handler.JSON(post)
}

func (s *Service) delete(ctx handler.Context, req PostIDRequest) handler.Response {
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return postError(err)
	}

	s.logAudit(ctx, "posts.delete", req.ID.String(), nil)
	return handler.Empty()
}

type UploadCoverRequest struct {
	ID    uuid.UUID          `path:"id"`
	Cover *binder.FileUpload `file:"cover"`
}

func (s *Service) uploadCover(ctx handler.Context, req UploadCoverRequest) handler.Response {
	if s.files == nil {
		return handler.JSONError(handler.ErrServiceUnavailable)
	}
	if req.Cover == nil || len(req.Cover.Content) == 0 {
		errs := handler.NewValidationError()
		errs.Add("cover", "cover file is required")
		return handler.JSONError(errs)
	}

	contentType := req.Cover.ContentType()
	if !strings.HasPrefix(contentType, "image/") {
		errs := handler.NewValidationError()
		errs.Add("cover", "cover must be an image")
		return handler.JSONError(errs)
	}

	post, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return postError(err)
	}

	objectPath := fmt.Sprintf("covers/%s/%s", post.ID, req.Cover.Filename)
	object, err := s.files.Save(ctx, objectPath, bytes.NewReader(req.Cover.Content), contentType)
	if err != nil {
		return handler.JSONError(err)
	}

	post.CoverURL = object.URL
	if err := s.repo.Update(ctx, post); err != nil {
		return postError(err)
	}

	s.logAudit(ctx, "posts.cover.upload", post.ID.String(), map[string]any{"path": object.Path})
	return handler.JSON(post)
}

func postError(err error) handler.Response {
	switch {
	case errors.Is(err, ErrPostNotFound):
		return handler.JSONError(handler.ErrNotFound)
	case errors.Is(err, ErrDuplicateSlug):
		return handler.JSONError(handler.ErrConflict)
	default:
		return handler.JSONError(err)
	}
}

func (s *Service) logAudit(ctx context.Context, action, postID string, metadata map[string]any) {
	if s.auditLog == nil {
		return
	}
	_ = s.auditLog.Log(ctx, action,
		audit.WithEntity("post", postID),
		audit.WithMetadata(metadata))
}
