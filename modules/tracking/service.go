package tracking

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/pkg/audit"
	"github.com/harmonia-labs/harmonia/pkg/binder"
	"github.com/harmonia-labs/harmonia/pkg/clientip"
	"github.com/harmonia-labs/harmonia/pkg/fingerprint"
	"github.com/harmonia-labs/harmonia/pkg/logger"
	"github.com/harmonia-labs/harmonia/pkg/qrcode"
	"github.com/harmonia-labs/harmonia/pkg/useragent"
)

const qrSize = 256

// Service manages tracked share links: admin CRUD plus the public
// redirect and QR endpoints. Click recording is best effort; a storage
// hiccup never blocks the redirect.
type Service struct {
	repo         Repository
	siteBaseURL  string
	auditLog     audit.Logger
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewService(repo Repository, siteBaseURL string, auditLog audit.Logger, log *slog.Logger, errorHandler handler.ErrorHandler[handler.Context]) *Service {
	if repo == nil {
		panic("tracking: repository is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:         repo,
		siteBaseURL:  strings.TrimSuffix(siteBaseURL, "/"),
		auditLog:     auditLog,
		log:          log,
		errorHandler: errorHandler,
	}
}

// Handle is the admin surface.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithBinders[handler.Context, ListRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, CreateLinkRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, CreateLinkRequest](s.errorHandler),
	))
	r.Get("/{code}/stats", handler.Wrap(s.stats,
		handler.WithBinders[handler.Context, CodeRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, CodeRequest](s.errorHandler),
	))

	return r
}

// RedirectHandle is the public surface mounted at /l.
func (s *Service) RedirectHandle() http.Handler {
	r := chi.NewRouter()

	r.Get("/{code}", handler.Wrap(s.redirect,
		handler.WithBinders[handler.Context, CodeRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, CodeRequest](s.errorHandler),
	))
	r.Get("/{code}/qr.png", handler.Wrap(s.qr,
		handler.WithBinders[handler.Context, CodeRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, CodeRequest](s.errorHandler),
	))

	return r
}

type ListRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (s *Service) list(ctx handler.Context, req ListRequest) handler.Response {
	links, total, err := s.repo.ListLinks(ctx, req.Limit, req.Offset)
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(links, handler.WithJSONMeta(map[string]any{"total": total}))
}

type CreateLinkRequest struct {
	TargetURL string `json:"target_url"`
	Campaign  string `json:"campaign"`
	Code      string `json:"code"`
}

func (req CreateLinkRequest) Validate() error {
	errs := handler.NewValidationError()

	target := strings.TrimSpace(req.TargetURL)
	if target == "" {
		errs.Add("target_url", "target_url is required")
	} else if u, err := url.Parse(target); err != nil || u.Scheme == "" || u.Host == "" {
		errs.Add("target_url", "target_url must be an absolute URL")
	}

	if !errs.IsEmpty() {
		return errs
	}
	return nil
}

func (s *Service) create(ctx handler.Context, req CreateLinkRequest) handler.Response {
	if err := req.Validate(); err != nil {
		return handler.JSONError(err)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = NewCode()
	}

	link := &Link{
		ID:        uuid.New(),
		Code:      code,
		TargetURL: strings.TrimSpace(req.TargetURL),
		Campaign:  strings.TrimSpace(req.Campaign),
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return handler.JSONError(handler.ErrConflict)
		}
		return handler.JSONError(err)
	}

	if s.auditLog != nil {
		_ = s.auditLog.Log(ctx, "links.create",
			audit.WithEntity("link", link.ID.String()),
			audit.WithMetadata(map[string]any{"code": link.Code}))
	}
	return handler.JSON(link, handler.WithJSONStatus(http.StatusCreated))
}

type CodeRequest struct {
	Code string `path:"code"`
}

func (s *Service) stats(ctx handler.Context, req CodeRequest) handler.Response {
	link, err := s.repo.GetLinkByCode(ctx, req.Code)
	if err != nil {
		return linkError(err)
	}

	stats, err := s.repo.Stats(ctx, link.ID)
	if err != nil {
		return linkError(err)
	}
	return handler.JSON(stats, handler.WithJSONMeta(map[string]any{"code": link.Code}))
}

func (s *Service) redirect(ctx handler.Context, req CodeRequest) handler.Response {
	link, err := s.repo.GetLinkByCode(ctx, req.Code)
	if err != nil {
		return linkError(err)
	}

	s.recordClick(ctx, link)

	return handler.Redirect(link.TargetURL,
		handler.WithRedirectStatus(http.StatusFound))
}

// recordClick captures visitor attributes from the request. Parse failures
// degrade to empty fields.
func (s *Service) recordClick(ctx handler.Context, link *Link) {
	r := ctx.Request()

	click := &Click{
		ID:          uuid.New(),
		LinkID:      link.ID,
		IP:          clientip.GetIP(r),
		Fingerprint: fingerprint.Generate(r),
		CreatedAt:   time.Now(),
	}
	if ua, err := useragent.Parse(r.UserAgent()); err == nil {
		click.Device = ua.DeviceType()
		click.Browser = ua.BrowserName()
	}

	if err := s.repo.RecordClick(ctx, click); err != nil {
		s.log.ErrorContext(ctx, "failed to record link click",
			slog.String("code", link.Code), logger.Error(err))
	}
}

func (s *Service) qr(ctx handler.Context, req CodeRequest) handler.Response {
	link, err := s.repo.GetLinkByCode(ctx, req.Code)
	if err != nil {
		return linkError(err)
	}

	content := fmt.Sprintf("%s/l/%s", s.siteBaseURL, link.Code)
	png, err := qrcode.Generate(content, qrSize)
	if err != nil {
		return handler.JSONError(err)
	}
	return pngResponse{data: png}
}

// pngResponse renders raw PNG bytes, bypassing the JSON envelope.
type pngResponse struct {
	data []byte
}

func (p pngResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(p.data)
	return err
}

func linkError(err error) handler.Response {
	if errors.Is(err, ErrLinkNotFound) {
		return handler.JSONError(handler.ErrNotFound)
	}
	return handler.JSONError(err)
}
