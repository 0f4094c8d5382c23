package providers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/modules/settings"
	"github.com/harmonia-labs/harmonia/pkg/audit"
	"github.com/harmonia-labs/harmonia/pkg/binder"
	"github.com/harmonia-labs/harmonia/pkg/esp"
	"github.com/harmonia-labs/harmonia/pkg/logger"
)

// customDescriptorsKey is the settings key holding the JSON array of
// admin-added custom provider descriptors, so they survive restarts.
const customDescriptorsKey = "custom_provider_descriptors"

// Service owns the provider registry lifecycle: bootstrap from persisted
// settings at startup, and the admin HTTP surface for configuring,
// activating and testing providers. Every mutation is written through to
// the settings store so the registry can be rebuilt on the next boot.
type Service struct {
	registry     *esp.Registry
	settings     *settings.Service
	auditLog     audit.Logger
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

func NewService(
	registry *esp.Registry,
	settingsSvc *settings.Service,
	auditLog audit.Logger,
	log *slog.Logger,
	errorHandler handler.ErrorHandler[handler.Context],
) *Service {
	if registry == nil {
		panic("providers: registry is required")
	}
	if settingsSvc == nil {
		panic("providers: settings service is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		registry:     registry,
		settings:     settingsSvc,
		auditLog:     auditLog,
		log:          log,
		errorHandler: errorHandler,
	}
}

// Registry exposes the wrapped registry for dispatch sites (lead capture,
// generation alerts).
func (s *Service) Registry() *esp.Registry {
	return s.registry
}

// Bootstrap restores persisted state into the registry: custom
// descriptors, per-provider configs, and the active pointer. Individual
// failures are logged and skipped so one corrupt entry cannot take the
// whole panel down.
func (s *Service) Bootstrap(ctx context.Context) error {
	for _, d := range s.customDescriptors(ctx) {
		if err := s.registry.Register(esp.NewCustomWebhook(d)); err != nil {
			s.log.WarnContext(ctx, "skipping persisted custom provider",
				logger.Provider(d.Name), logger.Error(err))
		}
	}

	for _, name := range s.registry.Names() {
		cfg, err := s.settings.ProviderConfig(ctx, name)
		if err != nil {
			s.log.WarnContext(ctx, "failed to restore provider config",
				logger.Provider(name), logger.Error(err))
			continue
		}
		if cfg == (esp.Config{}) {
			continue
		}
		if err := s.registry.Configure(name, cfg); err != nil {
			s.log.WarnContext(ctx, "failed to configure provider",
				logger.Provider(name), logger.Error(err))
		}
	}

	if active := s.settings.ActiveProvider(ctx); active != "" {
		if err := s.registry.SetActive(active); err != nil {
			s.log.WarnContext(ctx, "persisted active provider no longer registered",
				logger.Provider(active), logger.Error(err))
		}
	}
	return nil
}

func (s *Service) customDescriptors(ctx context.Context) []esp.Descriptor {
	raw, err := s.settings.Get(ctx, customDescriptorsKey)
	if err != nil {
		return nil
	}
	var descriptors []esp.Descriptor
	if err := json.Unmarshal([]byte(raw), &descriptors); err != nil {
		s.log.WarnContext(ctx, "corrupt custom provider descriptors", logger.Error(err))
		return nil
	}
	return descriptors
}

func (s *Service) persistCustomDescriptor(ctx context.Context, d esp.Descriptor) error {
	descriptors := append(s.customDescriptors(ctx), d)
	raw, err := json.Marshal(descriptors)
	if err != nil {
		return err
	}
	return s.settings.Set(ctx, customDescriptorsKey, string(raw))
}

func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.addCustom,
		handler.WithBinders[handler.Context, AddCustomRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, AddCustomRequest](s.errorHandler),
	))
	r.Put("/{name}/config", handler.Wrap(s.configure,
		handler.WithBinders[handler.Context, ConfigureRequest](binder.JSON(), binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, ConfigureRequest](s.errorHandler),
	))
	r.Post("/{name}/activate", handler.Wrap(s.activate,
		handler.WithBinders[handler.Context, ProviderNameRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, ProviderNameRequest](s.errorHandler),
	))
	r.Post("/{name}/test", handler.Wrap(s.test,
		handler.WithBinders[handler.Context, ProviderNameRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, ProviderNameRequest](s.errorHandler),
	))

	return r
}

// ProviderView is the sanitized per-provider shape returned to the admin
// panel. Secret config fields are masked, never echoed back.
type ProviderView struct {
	Descriptor esp.Descriptor `json:"descriptor"`
	Config     esp.Config     `json:"config"`
	Configured bool           `json:"configured"`
	Active     bool           `json:"active"`
}

func sanitizeConfig(cfg esp.Config) esp.Config {
	if cfg.APIKey != "" {
		cfg.APIKey = "********"
	}
	return cfg
}

func (s *Service) list(ctx handler.Context, _ struct{}) handler.Response {
	active := s.registry.ActiveName()

	views := make([]ProviderView, 0, len(s.registry.Names()))
	for _, name := range s.registry.Names() {
		p, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		cfg := p.Config()
		views = append(views, ProviderView{
			Descriptor: p.Descriptor(),
			Config:     sanitizeConfig(cfg),
			Configured: cfg.APIKey != "" || cfg.Endpoint != "",
			Active:     name == active,
		})
	}

	return handler.JSON(views, handler.WithJSONMeta(map[string]any{"active": active}))
}

type AddCustomRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}

func (req AddCustomRequest) Validate() error {
	errs := handler.NewValidationError()
	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "name is required")
	}
	if !errs.IsEmpty() {
		return errs
	}
	return nil
}

func (s *Service) addCustom(ctx handler.Context, req AddCustomRequest) handler.Response {
	if err := req.Validate(); err != nil {
		return handler.JSONError(err)
	}

	descriptor := esp.Descriptor{
		Name:        esp.Normalize(req.Name),
		DisplayName: req.DisplayName,
		Description: req.Description,
		IconURL:     req.IconURL,
	}
	if descriptor.DisplayName == "" {
		descriptor.DisplayName = req.Name
	}

	provider := esp.NewCustomWebhook(descriptor)
	if err := s.registry.Register(provider); err != nil {
		if errors.Is(err, esp.ErrDuplicateProvider) {
			return handler.JSONError(handler.ErrConflict)
		}
		return handler.JSONError(err)
	}

	if err := s.persistCustomDescriptor(ctx, provider.Descriptor()); err != nil {
		return handler.JSONError(err)
	}

	s.logAudit(ctx, "providers.add_custom", descriptor.Name, nil)
	return handler.JSON(ProviderView{Descriptor: provider.Descriptor()},
		handler.WithJSONStatus(http.StatusCreated))
}

type ProviderNameRequest struct {
	Name string `path:"name"`
}

type ConfigureRequest struct {
	Name        string `path:"name"`
	APIKey      string `json:"api_key"`
	SenderEmail string `json:"sender_email"`
	SenderName  string `json:"sender_name"`
	ReplyTo     string `json:"reply_to"`
	ListID      string `json:"list_id"`
	Endpoint    string `json:"endpoint"`
}

func (s *Service) configure(ctx handler.Context, req ConfigureRequest) handler.Response {
	cfg := esp.Config{
		APIKey:      req.APIKey,
		SenderEmail: req.SenderEmail,
		SenderName:  req.SenderName,
		ReplyTo:     req.ReplyTo,
		ListID:      req.ListID,
		Endpoint:    req.Endpoint,
	}

	if err := s.registry.Configure(req.Name, cfg); err != nil {
		if errors.Is(err, esp.ErrProviderNotFound) {
			return handler.JSONError(handler.ErrNotFound)
		}
		return handler.JSONError(err)
	}

	// Persist the merged config, not just the delta, so bootstrap
	// restores exactly what the registry holds now.
	p, _ := s.registry.Get(req.Name)
	if err := s.settings.SetProviderConfig(ctx, req.Name, p.Config()); err != nil {
		return handler.JSONError(err)
	}

	s.logAudit(ctx, "providers.configure", esp.Normalize(req.Name), nil)
	return handler.JSON(ProviderView{
		Descriptor: p.Descriptor(),
		Config:     sanitizeConfig(p.Config()),
		Configured: true,
		Active:     esp.Normalize(req.Name) == s.registry.ActiveName(),
	})
}

func (s *Service) activate(ctx handler.Context, req ProviderNameRequest) handler.Response {
	if err := s.registry.SetActive(req.Name); err != nil {
		if errors.Is(err, esp.ErrProviderNotFound) {
			return handler.JSONError(handler.ErrNotFound)
		}
		return handler.JSONError(err)
	}

	if err := s.settings.SetActiveProvider(ctx, req.Name); err != nil {
		return handler.JSONError(err)
	}

	s.logAudit(ctx, "providers.activate", esp.Normalize(req.Name), nil)
	return handler.JSON(map[string]string{"active": s.registry.ActiveName()})
}

func (s *Service) test(ctx handler.Context, req ProviderNameRequest) handler.Response {
	p, ok := s.registry.Get(req.Name)
	if !ok {
		return handler.JSONError(handler.ErrNotFound)
	}

	result := p.TestConnection(ctx)
	s.logAudit(ctx, "providers.test", esp.Normalize(req.Name), map[string]any{
		"success": result.Success,
	})
	return handler.JSON(result)
}

func (s *Service) logAudit(ctx context.Context, action, provider string, metadata map[string]any) {
	if s.auditLog == nil {
		return
	}
	_ = s.auditLog.Log(ctx, action,
		audit.WithEntity("provider", provider),
		audit.WithMetadata(metadata))
}
