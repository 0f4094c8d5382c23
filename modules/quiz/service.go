package quiz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/pkg/binder"
	"github.com/harmonia-labs/harmonia/pkg/logger"
)

// LeadCapturer funnels quiz respondents who left an email into lead
// capture. Failures are logged, never surfaced to the visitor.
type LeadCapturer interface {
	Capture(ctx context.Context, email, name, source string) error
}

// Service scores and stores quiz submissions, and lists results for the
// admin panel.
type Service struct {
	repo         Repository
	leads        LeadCapturer
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewService(repo Repository, leads LeadCapturer, log *slog.Logger, errorHandler handler.ErrorHandler[handler.Context]) *Service {
	if repo == nil {
		panic("quiz: repository is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:         repo,
		leads:        leads,
		log:          log,
		errorHandler: errorHandler,
	}
}

// PublicHandle serves the unauthenticated quiz submission endpoint.
func (s *Service) PublicHandle() http.Handler {
	r := chi.NewRouter()

	r.Post("/submit", handler.Wrap(s.submit,
		handler.WithBinders[handler.Context, SubmitRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, SubmitRequest](s.errorHandler),
	))

	return r
}

// Handle serves the admin results listing.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/results", handler.Wrap(s.listResults,
		handler.WithBinders[handler.Context, ListResultsRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListResultsRequest](s.errorHandler),
	))

	return r
}

type SubmitRequest struct {
	Answers map[string]int `json:"answers"`
	Email   string         `json:"email"`
	Name    string         `json:"name"`
}

type submitResponse struct {
	ID      uuid.UUID `json:"id"`
	Score   int       `json:"score"`
	Profile string    `json:"profile"`
}

func (s *Service) submit(ctx handler.Context, req SubmitRequest) handler.Response {
	score, profile, err := Score(req.Answers)
	if err != nil {
		errs := handler.NewValidationError()
		errs.Add("answers", "at least one answer is required")
		return handler.JSONError(errs)
	}

	result := &Result{
		ID:        uuid.New(),
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
		Answers:   req.Answers,
		Score:     score,
		Profile:   profile,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, result); err != nil {
		return handler.JSONError(err)
	}

	// A left-behind email opts the respondent into the funnel, but lead
	// capture problems must not break the quiz result for the visitor.
	if result.Email != "" && s.leads != nil {
		if err := s.leads.Capture(ctx, result.Email, req.Name, "quiz"); err != nil {
			s.log.WarnContext(ctx, "quiz lead capture failed",
				logger.Subscriber(result.Email), logger.Error(err))
		}
	}

	return handler.JSON(submitResponse{
		ID:      result.ID,
		Score:   result.Score,
		Profile: result.Profile,
	}, handler.WithJSONStatus(http.StatusCreated))
}

type ListResultsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (s *Service) listResults(ctx handler.Context, req ListResultsRequest) handler.Response {
	results, total, err := s.repo.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(results, handler.WithJSONMeta(map[string]any{"total": total}))
}
