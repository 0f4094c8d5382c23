package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/pkg/audit"
	"github.com/harmonia-labs/harmonia/pkg/binder"
	"github.com/harmonia-labs/harmonia/pkg/cron"
	"github.com/harmonia-labs/harmonia/pkg/esp"
	"github.com/harmonia-labs/harmonia/pkg/secrets"
)

// maskedValue replaces secret settings in admin API responses.
const maskedValue = "********"

// Service exposes typed access to the settings table plus the admin HTTP
// surface. Provider configurations are encrypted at rest with a key scoped
// to the provider name, so a leaked ciphertext from one provider cannot be
// replayed for another.
type Service struct {
	storage          Storage
	appKey           []byte
	auditLog         audit.Logger
	errorHandler     handler.ErrorHandler[handler.Context]
	onScheduleChange func(ctx context.Context, sc ScheduleSettings)
}

func NewService(storage Storage, appKey []byte, auditLog audit.Logger, errorHandler handler.ErrorHandler[handler.Context]) *Service {
	if storage == nil {
		panic("settings: storage is required")
	}
	return &Service{
		storage:      storage,
		appKey:       appKey,
		auditLog:     auditLog,
		errorHandler: errorHandler,
	}
}

// OnScheduleChange registers a callback fired after the generation
// schedule is updated through the admin API. Set once at wiring time.
func (s *Service) OnScheduleChange(fn func(ctx context.Context, sc ScheduleSettings)) {
	s.onScheduleChange = fn
}

func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.storage.Get(ctx, key)
}

func (s *Service) Set(ctx context.Context, key, value string) error {
	return s.storage.Set(ctx, key, value)
}

// SetProviderConfig encrypts and stores a provider's configuration.
func (s *Service) SetProviderConfig(ctx context.Context, provider string, cfg esp.Config) error {
	provider = esp.Normalize(provider)
	plaintext, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	ciphertext, err := secrets.EncryptString(s.appKey, "esp:"+provider, string(plaintext))
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, ProviderConfigKey(provider), ciphertext)
}

// ProviderConfig decrypts a stored provider configuration. A provider that
// was never configured yields a zero Config and no error.
func (s *Service) ProviderConfig(ctx context.Context, provider string) (esp.Config, error) {
	provider = esp.Normalize(provider)
	ciphertext, err := s.storage.Get(ctx, ProviderConfigKey(provider))
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return esp.Config{}, nil
		}
		return esp.Config{}, err
	}

	plaintext, err := secrets.DecryptString(s.appKey, "esp:"+provider, ciphertext)
	if err != nil {
		return esp.Config{}, err
	}

	var cfg esp.Config
	if err := json.Unmarshal([]byte(plaintext), &cfg); err != nil {
		return esp.Config{}, err
	}
	return cfg, nil
}

// ActiveProvider returns the configured active provider name, empty when
// none was ever activated.
func (s *Service) ActiveProvider(ctx context.Context) string {
	name, err := s.storage.Get(ctx, KeyActiveProvider)
	if err != nil {
		return ""
	}
	return name
}

func (s *Service) SetActiveProvider(ctx context.Context, name string) error {
	return s.storage.Set(ctx, KeyActiveProvider, esp.Normalize(name))
}

// ScheduleSettings is the generation schedule as stored in settings.
type ScheduleSettings struct {
	Enabled   bool           `json:"enabled"`
	Frequency cron.Frequency `json:"frequency"`
	Hour      int            `json:"hour"`
	Minute    int            `json:"minute"`
}

func (sc ScheduleSettings) Validate() error {
	errs := handler.NewValidationError()
	if !sc.Frequency.Valid() {
		errs.Add("frequency", fmt.Sprintf("unknown frequency %q", sc.Frequency))
	}
	if sc.Hour < 0 || sc.Hour > 23 {
		errs.Add("hour", "hour must be between 0 and 23")
	}
	if sc.Minute < 0 || sc.Minute > 59 {
		errs.Add("minute", "minute must be between 0 and 59")
	}
	if !errs.IsEmpty() {
		return errs
	}
	return nil
}

// Schedule reads the stored generation schedule, falling back to a
// disabled daily run at 09:00 when nothing was configured yet.
func (s *Service) Schedule(ctx context.Context) ScheduleSettings {
	sc := ScheduleSettings{Frequency: cron.FrequencyDaily, Hour: 9, Minute: 0}

	if v, err := s.storage.Get(ctx, KeyGenerationEnabled); err == nil {
		sc.Enabled = v == "true"
	}
	if v, err := s.storage.Get(ctx, KeyGenerationFrequency); err == nil && cron.Frequency(v).Valid() {
		sc.Frequency = cron.Frequency(v)
	}
	if v, err := s.storage.Get(ctx, KeyGenerationHour); err == nil {
		if hour, err := strconv.Atoi(v); err == nil && hour >= 0 && hour <= 23 {
			sc.Hour = hour
		}
	}
	if v, err := s.storage.Get(ctx, KeyGenerationMinute); err == nil {
		if minute, err := strconv.Atoi(v); err == nil && minute >= 0 && minute <= 59 {
			sc.Minute = minute
		}
	}
	return sc
}

func (s *Service) SetSchedule(ctx context.Context, sc ScheduleSettings) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	if err := s.storage.Set(ctx, KeyGenerationEnabled, strconv.FormatBool(sc.Enabled)); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, KeyGenerationFrequency, string(sc.Frequency)); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, KeyGenerationHour, strconv.Itoa(sc.Hour)); err != nil {
		return err
	}
	return s.storage.Set(ctx, KeyGenerationMinute, strconv.Itoa(sc.Minute))
}

// RecordRun writes the outcome of a generation run into the three
// last-run settings. A nil runErr clears the last error.
func (s *Service) RecordRun(ctx context.Context, keyword string, at time.Time, runErr error) error {
	if err := s.storage.Set(ctx, KeyLastRunAt, at.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, KeyLastKeyword, keyword); err != nil {
		return err
	}
	lastError := ""
	if runErr != nil {
		lastError = runErr.Error()
	}
	return s.storage.Set(ctx, KeyLastError, lastError)
}

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Put("/", handler.Wrap(s.update,
		handler.WithBinders[handler.Context, UpdateSettingsRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, UpdateSettingsRequest](s.errorHandler),
	))
	r.Get("/schedule", handler.Wrap(s.getSchedule,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Put("/schedule", handler.Wrap(s.updateSchedule,
		handler.WithBinders[handler.Context, ScheduleSettings](binder.JSON()),
		handler.WithErrorHandler[handler.Context, ScheduleSettings](s.errorHandler),
	))

	return r
}

func (s *Service) list(ctx handler.Context, _ struct{}) handler.Response {
	all, err := s.storage.GetAll(ctx)
	if err != nil {
		return handler.JSONError(err)
	}

	for key := range all {
		if IsSecretKey(key) {
			all[key] = maskedValue
		}
	}
	return handler.JSON(all)
}

type UpdateSettingsRequest struct {
	Values map[string]string `json:"values"`
}

func (s *Service) update(ctx handler.Context, req UpdateSettingsRequest) handler.Response {
	if len(req.Values) == 0 {
		errs := handler.NewValidationError()
		errs.Add("values", "at least one setting is required")
		return handler.JSONError(errs)
	}

	keys := make([]string, 0, len(req.Values))
	for key, value := range req.Values {
		key = Canonicalize(key)
		if key == "" {
			continue
		}
		if err := s.storage.Set(ctx, key, value); err != nil {
			return handler.JSONError(err)
		}
		keys = append(keys, key)
	}

	s.logAudit(ctx, "settings.update", map[string]any{"keys": keys})
	return handler.Empty()
}

func (s *Service) getSchedule(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(s.Schedule(ctx))
}

func (s *Service) updateSchedule(ctx handler.Context, req ScheduleSettings) handler.Response {
	if err := s.SetSchedule(ctx, req); err != nil {
		return handler.JSONError(err)
	}

	s.logAudit(ctx, "settings.schedule.update", map[string]any{
		"frequency": string(req.Frequency),
		"enabled":   req.Enabled,
	})

	applied := s.Schedule(ctx)
	if s.onScheduleChange != nil {
		s.onScheduleChange(ctx, applied)
	}
	return handler.JSON(applied)
}

func (s *Service) logAudit(ctx context.Context, action string, metadata map[string]any) {
	if s.auditLog == nil {
		return
	}
	_ = s.auditLog.Log(ctx, action, audit.WithEntity("settings", ""), audit.WithMetadata(metadata))
}
