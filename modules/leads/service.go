package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/pkg/audit"
	"github.com/harmonia-labs/harmonia/pkg/binder"
	"github.com/harmonia-labs/harmonia/pkg/email"
	"github.com/harmonia-labs/harmonia/pkg/esp"
	"github.com/harmonia-labs/harmonia/pkg/logger"
	"github.com/harmonia-labs/harmonia/pkg/token"
)

// Config carries the lead capture settings.
type Config struct {
	UnsubscribeSecret string `env:"UNSUBSCRIBE_SECRET,required"`
	SiteBaseURL       string `env:"SITE_BASE_URL" envDefault:"http://localhost:8080"`
}

// unsubscribePayload is the signed content of an unsubscribe link token.
type unsubscribePayload struct {
	SubscriberID uuid.UUID `json:"sid"`
}

// Service implements lead capture: local persistence first, then
// best-effort dispatch to the active ESP and a lead-magnet email. Provider
// failures are recorded on the subscriber row and logged; the visitor
// always sees success once the local write lands.
type Service struct {
	cfg          Config
	repo         Repository
	registry     *esp.Registry
	fallback     email.EmailSender
	auditLog     audit.Logger
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewService(
	cfg Config,
	repo Repository,
	registry *esp.Registry,
	fallback email.EmailSender,
	auditLog audit.Logger,
	log *slog.Logger,
	errorHandler handler.ErrorHandler[handler.Context],
) *Service {
	if repo == nil {
		panic("leads: repository is required")
	}
	if registry == nil {
		panic("leads: provider registry is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:          cfg,
		repo:         repo,
		registry:     registry,
		fallback:     fallback,
		auditLog:     auditLog,
		log:          log,
		errorHandler: errorHandler,
	}
}

// Capture persists a lead and kicks off the provider sync and lead-magnet
// email. Only a local persistence failure or an invalid email is an error.
func (s *Service) Capture(ctx context.Context, emailAddr, name, source string) error {
	_, err := s.capture(ctx, emailAddr, name, source)
	return err
}

func (s *Service) capture(ctx context.Context, emailAddr, name, source string) (*Subscriber, error) {
	normalized, err := NormalizeEmail(emailAddr)
	if err != nil {
		return nil, err
	}

	input := esp.SubscriberInput{Email: normalized, Name: name, Source: source}.Normalize()

	now := time.Now()
	subscriber := &Subscriber{
		ID:        uuid.New(),
		Email:     normalized,
		Name:      input.Name,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Source:    source,
		Status:    StatusSubscribed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, subscriber); err != nil {
		return nil, err
	}

	s.syncToProvider(ctx, subscriber, input)
	s.sendLeadMagnet(ctx, subscriber)

	return subscriber, nil
}

// syncToProvider pushes the lead to the active ESP. No provider, or a
// provider failure, downgrades to a logged sync error on the row.
func (s *Service) syncToProvider(ctx context.Context, subscriber *Subscriber, input esp.SubscriberInput) {
	provider, err := s.registry.Active()
	if err != nil {
		s.log.WarnContext(ctx, "lead not synced: no active provider",
			logger.Subscriber(subscriber.Email))
		s.setSyncState(ctx, subscriber.ID, false, err.Error())
		return
	}

	result := provider.AddSubscriber(ctx, input)
	if !result.Success {
		s.log.WarnContext(ctx, "provider rejected subscriber",
			logger.Provider(provider.Descriptor().Name),
			logger.Subscriber(subscriber.Email),
			slog.String("provider_error", result.Error))
		s.setSyncState(ctx, subscriber.ID, false, result.Error)
		return
	}

	s.setSyncState(ctx, subscriber.ID, true, "")
}

func (s *Service) setSyncState(ctx context.Context, id uuid.UUID, synced bool, providerError string) {
	if err := s.repo.SetSyncState(ctx, id, synced, providerError); err != nil {
		s.log.ErrorContext(ctx, "failed to record provider sync state", logger.Error(err))
	}
}

// sendLeadMagnet delivers the welcome email through the active provider,
// falling back to the transactional mailer when the provider send fails.
func (s *Service) sendLeadMagnet(ctx context.Context, subscriber *Subscriber) {
	unsubURL, err := s.UnsubscribeURL(subscriber.ID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to build unsubscribe link", logger.Error(err))
		return
	}

	subject, html := leadMagnetEmail(subscriber.FirstName, s.cfg.SiteBaseURL, unsubURL)

	if provider, err := s.registry.Active(); err == nil {
		result := provider.SendEmail(ctx, esp.SendEmailInput{
			To:      subscriber.Email,
			Subject: subject,
			HTML:    html,
		})
		if result.Success {
			return
		}
		s.log.WarnContext(ctx, "provider send failed, using fallback mailer",
			logger.Provider(provider.Descriptor().Name),
			slog.String("provider_error", result.Error))
	}

	if s.fallback == nil {
		s.log.WarnContext(ctx, "lead magnet not sent: no fallback mailer",
			logger.Subscriber(subscriber.Email))
		return
	}
	if err := s.fallback.SendEmail(ctx, email.SendEmailParams{
		SendTo:   subscriber.Email,
		Subject:  subject,
		BodyHTML: html,
		Tag:      "lead-magnet",
	}); err != nil {
		s.log.ErrorContext(ctx, "fallback lead magnet send failed",
			logger.Subscriber(subscriber.Email), logger.Error(err))
	}
}

// UnsubscribeURL builds the signed one-click unsubscribe link for a
// subscriber.
func (s *Service) UnsubscribeURL(subscriberID uuid.UUID) (string, error) {
	signed, err := token.GenerateToken(unsubscribePayload{SubscriberID: subscriberID}, s.cfg.UnsubscribeSecret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/unsubscribe?token=%s",
		strings.TrimSuffix(s.cfg.SiteBaseURL, "/"), signed), nil
}

// PublicHandle serves the unauthenticated capture endpoint.
func (s *Service) PublicHandle() http.Handler {
	r := chi.NewRouter()

	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, CaptureRequest](binder.JSON(), binder.Form()),
		handler.WithErrorHandler[handler.Context, CaptureRequest](s.errorHandler),
	))

	return r
}

// UnsubscribeHandle serves GET /api/unsubscribe?token=.
func (s *Service) UnsubscribeHandle() http.Handler {
	return handler.Wrap(s.unsubscribe,
		handler.WithBinders[handler.Context, UnsubscribeRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, UnsubscribeRequest](s.errorHandler),
	)
}

// Handle is the admin surface: paged listing and deletion.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithBinders[handler.Context, ListRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
	))
	r.Delete("/{id}", handler.Wrap(s.delete,
		handler.WithBinders[handler.Context, SubscriberIDRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, SubscriberIDRequest](s.errorHandler),
	))

	return r
}

type CaptureRequest struct {
	Email  string `json:"email" form:"email"`
	Name   string `json:"name" form:"name"`
	Source string `json:"source" form:"source"`
}

func (s *Service) create(ctx handler.Context, req CaptureRequest) handler.Response {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "website"
	}

	subscriber, err := s.capture(ctx, req.Email, req.Name, source)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			errs := handler.NewValidationError()
			errs.Add("email", "a valid email address is required")
			return handler.JSONError(errs)
		}
		return handler.JSONError(err)
	}

	return handler.JSON(map[string]any{
		"subscribed": true,
		"id":         subscriber.ID,
	}, handler.WithJSONStatus(http.StatusCreated))
}

type UnsubscribeRequest struct {
	Token string `query:"token"`
}

func (s *Service) unsubscribe(ctx handler.Context, req UnsubscribeRequest) handler.Response {
	if req.Token == "" {
		return handler.JSONError(handler.ErrBadRequest)
	}

	payload, err := token.ParseToken[unsubscribePayload](req.Token, s.cfg.UnsubscribeSecret)
	if err != nil {
		return handler.JSONError(handler.ErrBadRequest)
	}

	if err := s.repo.SetStatus(ctx, payload.SubscriberID, StatusUnsubscribed); err != nil {
		if errors.Is(err, ErrSubscriberNotFound) {
			return handler.JSONError(handler.ErrNotFound)
		}
		return handler.JSONError(err)
	}

	return handler.JSON(map[string]string{"status": StatusUnsubscribed})
}

type ListRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (s *Service) list(ctx handler.Context, req ListRequest) handler.Response {
	subscribers, total, err := s.repo.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(subscribers, handler.WithJSONMeta(map[string]any{"total": total}))
}

type SubscriberIDRequest struct {
	ID uuid.UUID `path:"id"`
}

func (s *Service) delete(ctx handler.Context, req SubscriberIDRequest) handler.Response {
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, ErrSubscriberNotFound) {
			return handler.JSONError(handler.ErrNotFound)
		}
		return handler.JSONError(err)
	}

	if s.auditLog != nil {
		_ = s.auditLog.Log(ctx, "subscribers.delete",
			audit.WithEntity("subscriber", req.ID.String()))
	}
	return handler.Empty()
}
