package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harmonia-labs/harmonia/handler"
	"github.com/harmonia-labs/harmonia/modules/admin"
	"github.com/harmonia-labs/harmonia/modules/blog"
	"github.com/harmonia-labs/harmonia/modules/generation"
	"github.com/harmonia-labs/harmonia/modules/leads"
	"github.com/harmonia-labs/harmonia/modules/providers"
	"github.com/harmonia-labs/harmonia/modules/quiz"
	"github.com/harmonia-labs/harmonia/modules/settings"
	"github.com/harmonia-labs/harmonia/modules/tracking"
	"github.com/harmonia-labs/harmonia/pkg/audit"
	"github.com/harmonia-labs/harmonia/pkg/broadcast"
	"github.com/harmonia-labs/harmonia/pkg/clientip"
	"github.com/harmonia-labs/harmonia/pkg/config"
	"github.com/harmonia-labs/harmonia/pkg/cron"
	"github.com/harmonia-labs/harmonia/pkg/email"
	"github.com/harmonia-labs/harmonia/pkg/esp"
	"github.com/harmonia-labs/harmonia/pkg/fingerprint"
	"github.com/harmonia-labs/harmonia/pkg/genai"
	"github.com/harmonia-labs/harmonia/pkg/httpserver"
	"github.com/harmonia-labs/harmonia/pkg/logger"
	"github.com/harmonia-labs/harmonia/pkg/pg"
	"github.com/harmonia-labs/harmonia/pkg/ratelimit"
	"github.com/harmonia-labs/harmonia/pkg/redis"
	"github.com/harmonia-labs/harmonia/pkg/requestid"
	"github.com/harmonia-labs/harmonia/pkg/stockphoto"
	"github.com/harmonia-labs/harmonia/pkg/storage"
)

type appConfig struct {
	Addr        string `env:"HTTP_ADDR" envDefault:":8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	AppKey      string `env:"APP_SECRET_KEY,required"`
	SiteBaseURL string `env:"SITE_BASE_URL" envDefault:"http://localhost:8080"`

	ProviderCatalogPath string `env:"PROVIDER_CATALOG_PATH" envDefault:"providers.yaml"`

	OpenAIKey string `env:"OPENAI_API_KEY"`
	PexelsKey string `env:"PEXELS_API_KEY"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	UploadsDir  string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	EmailDevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`

	PublicRateLimit  int           `env:"PUBLIC_RATE_LIMIT" envDefault:"60"`
	PublicRateWindow time.Duration `env:"PUBLIC_RATE_WINDOW" envDefault:"1m"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	var pgCfg pg.Config
	var redisCfg redis.Config
	var emailCfg email.Config
	var leadsCfg leads.Config
	config.MustLoad(&cfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&leadsCfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, "harmonia"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	appKey, err := decodeAppKey(cfg.AppKey)
	if err != nil {
		return fmt.Errorf("decode app key: %w", err)
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	errorHandler := handler.NewErrorHandler(log)

	// Admin auth and audit trail.
	adminStorage := admin.NewPGStorage(pool)
	if cfg.AdminPassword != "" {
		hash, err := admin.HashPassword(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if err := adminStorage.EnsureUser(ctx, cfg.AdminUsername, hash); err != nil {
			return fmt.Errorf("bootstrap admin user: %w", err)
		}
	}
	adminSvc := admin.NewService(adminStorage, errorHandler)

	auditLog := audit.NewLogger(audit.NewPGStorage(pool),
		audit.WithActorExtractor(admin.ActorFromContext),
		audit.WithRequestIDExtractor(func(ctx context.Context) (string, bool) {
			id := requestid.FromContext(ctx)
			return id, id != ""
		}),
		audit.WithIPExtractor(func(ctx context.Context) (string, bool) {
			ip := clientip.GetIPFromContext(ctx)
			return ip, ip != ""
		}),
	)

	settingsSvc := settings.NewService(settings.NewPGStorage(pool), appKey, auditLog, errorHandler)

	// ESP registry: built-in providers plus the optional deploy-time
	// catalog of custom webhook providers.
	registry := esp.NewRegistry()
	for _, provider := range []esp.Provider{
		esp.NewSendGrid(), esp.NewMailerLite(), esp.NewBrevo(), esp.NewOmnisend(),
	} {
		if err := registry.Register(provider); err != nil {
			return fmt.Errorf("register provider: %w", err)
		}
	}
	catalog, err := esp.LoadCatalog(cfg.ProviderCatalogPath)
	if err != nil {
		log.Warn("failed to load provider catalog", logger.Error(err))
	} else if err := esp.RegisterCatalog(registry, catalog); err != nil {
		log.Warn("failed to register catalog providers", logger.Error(err))
	}

	providersSvc := providers.NewService(registry, settingsSvc, auditLog, log, errorHandler)
	if err := providersSvc.Bootstrap(ctx); err != nil {
		log.Warn("provider bootstrap incomplete", logger.Error(err))
	}

	// Transactional fallback mailer: Postmark in real deployments, the
	// file-based dev sender otherwise.
	var mailer email.EmailSender
	if emailCfg.PostmarkServerToken != "" {
		mailer, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			return fmt.Errorf("create postmark client: %w", err)
		}
	} else {
		mailer = email.NewDevSender(cfg.EmailDevDir)
	}

	files, serveUploads, err := newFileStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create file storage: %w", err)
	}

	blogSvc := blog.NewService(blog.NewPGRepository(pool), files, auditLog, errorHandler)
	leadsSvc := leads.NewService(leadsCfg, leads.NewPGRepository(pool), registry, mailer, auditLog, log, errorHandler)
	quizSvc := quiz.NewService(quiz.NewPGRepository(pool), leadsSvc, log, errorHandler)
	trackingSvc := tracking.NewService(tracking.NewPGRepository(pool), cfg.SiteBaseURL, auditLog, log, errorHandler)

	// Generation pipeline and its cron job.
	events := broadcast.NewMemoryBroadcaster[generation.Event](64)
	defer events.Close()

	keywordRepo := generation.NewPGKeywordRepository(pool)
	runRepo := generation.NewPGRunRepository(pool)

	pipelineOpts := []generation.PipelineOption{
		generation.WithEvents(events),
		generation.WithImageMirror(files),
		generation.WithPipelineLogger(log),
	}
	if cfg.OpenAIKey != "" {
		generator, err := genai.New(cfg.OpenAIKey)
		if err != nil {
			return fmt.Errorf("create genai client: %w", err)
		}
		pipelineOpts = append(pipelineOpts, generation.WithGenerator(generator))
	} else {
		log.Warn("OPENAI_API_KEY not set, generation uses template content")
	}
	if cfg.PexelsKey != "" {
		searcher, err := stockphoto.New(cfg.PexelsKey)
		if err != nil {
			return fmt.Errorf("create stockphoto client: %w", err)
		}
		pipelineOpts = append(pipelineOpts, generation.WithImageSearcher(searcher))
	}

	pipeline := generation.NewPipeline(keywordRepo, runRepo, blogSvc, settingsSvc, pipelineOpts...)
	runner := cron.NewRunner(cron.WithLogger(log))
	genSvc := generation.NewService(pipeline, keywordRepo, runRepo, settingsSvc,
		runner, events, auditLog, log, errorHandler)
	if err := genSvc.RegisterJob(ctx); err != nil {
		return fmt.Errorf("register generation job: %w", err)
	}
	settingsSvc.OnScheduleChange(genSvc.Reschedule)

	go func() {
		if err := runner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("cron runner stopped", logger.Error(err))
		}
	}()

	// Public endpoints are rate limited per client IP.
	rateStore, err := ratelimit.NewRedisStore(redisClient)
	if err != nil {
		return fmt.Errorf("create rate limit store: %w", err)
	}
	limiter, err := ratelimit.NewSlidingWindow(rateStore, cfg.PublicRateLimit, cfg.PublicRateWindow)
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}
	publicLimit := ratelimit.Middleware(limiter, clientip.GetIP)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(fingerprint.Middleware)

	r.Get("/livez", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool), redis.Healthcheck(redisClient)))

	r.Route("/api", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			pub.Use(publicLimit)
			pub.Mount("/quiz", quizSvc.PublicHandle())
			pub.Mount("/posts", blogSvc.PublicHandle())
			pub.Mount("/leads", leadsSvc.PublicHandle())
			pub.Mount("/unsubscribe", leadsSvc.UnsubscribeHandle())
		})

		api.Route("/admin", func(adm chi.Router) {
			adm.Mount("/", adminSvc.Handle())

			adm.Group(func(protected chi.Router) {
				protected.Use(admin.Middleware(adminStorage))
				protected.Mount("/providers", providersSvc.Handle())
				protected.Route("/posts", func(pr chi.Router) {
					pr.Post("/generate", genSvc.TriggerHandler())
					pr.Mount("/", blogSvc.Handle())
				})
				protected.Mount("/generation", genSvc.Handle())
				protected.Mount("/settings", settingsSvc.Handle())
				protected.Mount("/keywords", genSvc.KeywordsHandle())
				protected.Mount("/subscribers", leadsSvc.Handle())
				protected.Mount("/quiz", quizSvc.Handle())
				protected.Mount("/links", trackingSvc.Handle())
			})
		})
	})

	r.Mount("/l", trackingSvc.RedirectHandle())

	if serveUploads {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	srv := httpserver.New(
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(log),
		// No write timeout: the generation SSE stream stays open for the
		// lifetime of the admin panel tab.
		httpserver.WithReadTimeout(10*time.Second),
		httpserver.WithIdleTimeout(2*time.Minute),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("harmonia listening", slog.String("addr", cfg.Addr))
		}),
	)
	return srv.Run(ctx, r)
}

// newFileStorage picks S3 when a bucket is configured, the local disk
// otherwise. The boolean reports whether uploads need local serving.
func newFileStorage(ctx context.Context, cfg appConfig) (storage.Storage, bool, error) {
	var s3Cfg storage.S3Config
	config.MustLoad(&s3Cfg)

	if s3Cfg.Bucket != "" {
		st, err := storage.NewS3Storage(ctx, s3Cfg)
		return st, false, err
	}

	st, err := storage.NewLocalStorage(cfg.UploadsDir, cfg.SiteBaseURL+"/uploads")
	return st, true, err
}

// decodeAppKey accepts the 32-byte secrets key as hex, base64, or raw.
func decodeAppKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, errors.New("empty app key")
	}
	if key, err := hex.DecodeString(raw); err == nil {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return key, nil
	}
	return []byte(raw), nil
}
