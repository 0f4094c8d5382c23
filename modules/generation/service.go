package generation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/modules/settings"
	"github.com/harmonia-labs/harmonia/pkg/audit"
	"github.com/harmonia-labs/harmonia/pkg/binder"
	"github.com/harmonia-labs/harmonia/pkg/broadcast"
	"github.com/harmonia-labs/harmonia/pkg/cron"
	"github.com/harmonia-labs/harmonia/pkg/logger"
)

// jobName identifies the scheduled generation job on the cron runner.
const jobName = "blog-generation"

// ErrRunInProgress is returned when a run is requested while another one
// is still executing. Scheduled fires and manual triggers share the guard.
var ErrRunInProgress = errors.New("generation run already in progress")

// Service owns the generation surface: the keyword pool, manual triggers,
// run status, the SSE progress stream, and the cron job registration.
type Service struct {
	pipeline     *Pipeline
	keywords     KeywordRepository
	runs         RunRepository
	settings     *settings.Service
	runner       *cron.Runner
	events       broadcast.Broadcaster[Event]
	auditLog     audit.Logger
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]

	running  sync.Mutex
	inFlight atomic.Bool
}

func NewService(pipeline *Pipeline, keywords KeywordRepository, runs RunRepository, settingsSvc *settings.Service, runner *cron.Runner, events broadcast.Broadcaster[Event], auditLog audit.Logger, log *slog.Logger, errorHandler handler.ErrorHandler[handler.Context]) *Service {
	if pipeline == nil || keywords == nil || runs == nil || settingsSvc == nil {
		panic("generation: pipeline, keywords, runs and settings are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pipeline:     pipeline,
		keywords:     keywords,
		runs:         runs,
		settings:     settingsSvc,
		runner:       runner,
		events:       events,
		auditLog:     auditLog,
		log:          log,
		errorHandler: errorHandler,
	}
}

// Generate runs the pipeline once, refusing to overlap a run already in
// flight.
func (s *Service) Generate(ctx context.Context) (*Run, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	s.inFlight.Store(true)
	defer s.inFlight.Store(false)

	return s.pipeline.Run(ctx)
}

// RegisterJob adds the scheduled job to the cron runner using the stored
// schedule. The job is always registered; the enabled flag is checked at
// fire time so toggling it never requires runner surgery.
func (s *Service) RegisterJob(ctx context.Context) error {
	if s.runner == nil {
		return nil
	}

	sc := s.settings.Schedule(ctx)
	schedule, err := cron.ScheduleForFrequency(sc.Frequency, sc.Hour, sc.Minute)
	if err != nil {
		return err
	}
	return s.runner.AddJob(jobName, schedule, s.runScheduled)
}

// Reschedule recomputes the job's next fire after a schedule change. It
// matches the settings OnScheduleChange callback signature.
func (s *Service) Reschedule(ctx context.Context, sc settings.ScheduleSettings) {
	if s.runner == nil {
		return
	}

	schedule, err := cron.ScheduleForFrequency(sc.Frequency, sc.Hour, sc.Minute)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to build generation schedule", logger.Error(err))
		return
	}
	if err := s.runner.Reschedule(jobName, schedule); err != nil {
		s.log.ErrorContext(ctx, "failed to reschedule generation job", logger.Error(err))
	}
}

// runScheduled is the cron job body. A disabled schedule or an in-flight
// run turns the fire into a no-op rather than an error.
func (s *Service) runScheduled(ctx context.Context) error {
	if !s.settings.Schedule(ctx).Enabled {
		s.log.DebugContext(ctx, "scheduled generation disabled, skipping fire")
		return nil
	}

	_, err := s.Generate(ctx)
	if errors.Is(err, ErrRunInProgress) {
		s.log.WarnContext(ctx, "scheduled fire skipped, run already in progress")
		return nil
	}
	return err
}

// TriggerHandler is the manual "generate now" endpoint, mounted under the
// admin posts router.
func (s *Service) TriggerHandler() http.HandlerFunc {
	return handler.Wrap(s.trigger,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	)
}

// Handle is the generation status surface.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/status", handler.Wrap(s.status,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Get("/events", handler.Wrap(s.stream,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))

	return r
}

// KeywordsHandle is the keyword pool admin surface.
func (s *Service) KeywordsHandle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.listKeywords,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.addKeyword,
		handler.WithBinders[handler.Context, AddKeywordRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, AddKeywordRequest](s.errorHandler),
	))
	r.Delete("/{id}", handler.Wrap(s.deleteKeyword,
		handler.WithBinders[handler.Context, KeywordIDRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, KeywordIDRequest](s.errorHandler),
	))

	return r
}

func (s *Service) trigger(ctx handler.Context, _ struct{}) handler.Response {
	run, err := s.Generate(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		return handler.JSONError(handler.ErrConflict)
	case errors.Is(err, ErrNoKeywords):
		errs := handler.NewValidationError()
		errs.Add("keywords", "add at least one keyword before generating")
		return handler.JSONError(errs)
	case err != nil:
		// The pipeline already recorded the failure; surface the run so the
		// panel can show what went wrong.
		if run != nil {
			return handler.JSON(run, handler.WithJSONStatus(http.StatusInternalServerError))
		}
		return handler.JSONError(err)
	}

	if s.auditLog != nil {
		_ = s.auditLog.Log(ctx, "generation.trigger",
			audit.WithEntity("generation_run", run.ID.String()),
			audit.WithMetadata(map[string]any{"keyword": run.Keyword}))
	}
	return handler.JSON(run, handler.WithJSONStatus(http.StatusAccepted))
}

type statusResponse struct {
	Schedule    settings.ScheduleSettings `json:"schedule"`
	NextRun     *time.Time                `json:"next_run,omitempty"`
	Running     bool                      `json:"running"`
	LastRunAt   string                    `json:"last_run_at,omitempty"`
	LastKeyword string                    `json:"last_keyword,omitempty"`
	LastError   string                    `json:"last_error,omitempty"`
	RecentRuns  []Run                     `json:"recent_runs"`
}

func (s *Service) status(ctx handler.Context, _ struct{}) handler.Response {
	resp := statusResponse{
		Schedule: s.settings.Schedule(ctx),
		Running:  s.inFlight.Load(),
	}

	if s.runner != nil {
		if next, err := s.runner.NextRun(jobName); err == nil {
			resp.NextRun = &next
		}
	}
	if v, err := s.settings.Get(ctx, settings.KeyLastRunAt); err == nil {
		resp.LastRunAt = v
	}
	if v, err := s.settings.Get(ctx, settings.KeyLastKeyword); err == nil {
		resp.LastKeyword = v
	}
	if v, err := s.settings.Get(ctx, settings.KeyLastError); err == nil {
		resp.LastError = v
	}

	runs, err := s.runs.List(ctx, 10)
	if err != nil {
		return handler.JSONError(err)
	}
	resp.RecentRuns = runs

	return handler.JSON(resp)
}

// stream pushes pipeline progress events to the admin panel over SSE.
func (s *Service) stream(ctx handler.Context, _ struct{}) handler.Response {
	if s.events == nil {
		return handler.JSONError(handler.ErrServiceUnavailable)
	}

	return handler.SSE(func(stream handler.StreamContext) error {
		sub := s.events.Subscribe(stream)
		defer sub.Close()

		for {
			select {
			case <-stream.Done():
				return nil
			case msg, ok := <-sub.Receive(stream):
				if !ok {
					return nil
				}
				if err := stream.Send("progress", msg.Data); err != nil {
					return err
				}
			}
		}
	})
}

func (s *Service) listKeywords(ctx handler.Context, _ struct{}) handler.Response {
	keywords, err := s.keywords.List(ctx)
	if err != nil {
		return handler.JSONError(err)
	}
	return handler.JSON(keywords, handler.WithJSONMeta(map[string]any{"total": len(keywords)}))
}

type AddKeywordRequest struct {
	Phrase string `json:"phrase"`
}

func (req AddKeywordRequest) Validate() error {
	errs := handler.NewValidationError()
	if strings.TrimSpace(req.Phrase) == "" {
		errs.Add("phrase", "phrase is required")
	}
	if !errs.IsEmpty() {
		return errs
	}
	return nil
}

func (s *Service) addKeyword(ctx handler.Context, req AddKeywordRequest) handler.Response {
	if err := req.Validate(); err != nil {
		return handler.JSONError(err)
	}

	keyword := &Keyword{
		ID:     uuid.New(),
		Phrase: strings.ToLower(strings.TrimSpace(req.Phrase)),
	}
	if err := s.keywords.Add(ctx, keyword); err != nil {
		if errors.Is(err, ErrDuplicateKeyword) {
			return handler.JSONError(handler.ErrConflict)
		}
		return handler.JSONError(err)
	}

	if s.auditLog != nil {
		_ = s.auditLog.Log(ctx, "keywords.add",
			audit.WithEntity("keyword", keyword.ID.String()),
			audit.WithMetadata(map[string]any{"phrase": keyword.Phrase}))
	}
	return handler.JSON(keyword, handler.WithJSONStatus(http.StatusCreated))
}

type KeywordIDRequest struct {
	ID uuid.UUID `path:"id"`
}

func (s *Service) deleteKeyword(ctx handler.Context, req KeywordIDRequest) handler.Response {
	if err := s.keywords.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, ErrKeywordNotFound) {
			return handler.JSONError(handler.ErrNotFound)
		}
		return handler.JSONError(err)
	}

	if s.auditLog != nil {
		_ = s.auditLog.Log(ctx, "keywords.delete",
			audit.WithEntity("keyword", req.ID.String()))
	}
	return handler.Empty()
}
