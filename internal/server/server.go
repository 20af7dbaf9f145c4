// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "foodcrimes/docs" // swagger docs
	"foodcrimes/internal/bootstrap"
	"foodcrimes/internal/config"
	"foodcrimes/internal/featureflags"
	"foodcrimes/internal/imagegen"
	"foodcrimes/internal/middleware"
	"foodcrimes/internal/models"
	"foodcrimes/internal/notifications"
	"foodcrimes/internal/prompt"
	"foodcrimes/internal/repository"
	"foodcrimes/internal/service"
	"foodcrimes/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the external collaborators of the daily image job.
type Deps struct {
	Generator imagegen.Generator
	Uploader  storage.Uploader
	// Composer overrides the catalog-backed prompt composer.
	Composer service.Composer
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	catalogRepo    repository.CatalogRepository
	suggestionRepo repository.SuggestionRepository
	imageRepo      repository.DailyImageRepository

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager
	uploadsDir   string

	duplicateService  *service.DuplicateService
	moderationService *service.ModerationService
	dailyImageService *service.DailyImageService
}

// NewServer connects the runtime and builds the image backends from cfg.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedCatalog: true})
	if err != nil {
		return nil, err
	}
	deps, err := BuildDeps(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb, deps)
}

// BuildDeps builds the image generator and uploader selected by cfg. Outside
// production a missing generator credential degrades to imagegen.Unavailable.
func BuildDeps(ctx context.Context, cfg *config.Config) (Deps, error) {
	var deps Deps

	gen, err := imagegen.NewGenAIGenerator(ctx, imagegen.Config{
		Backend:  cfg.ImageBackend,
		APIKey:   cfg.GeminiAPIKey,
		Project:  cfg.GCPProjectID,
		Location: cfg.GCPLocation,
		Model:    cfg.ImageModel,
	})
	switch {
	case err == nil:
		deps.Generator = gen
	case cfg.IsProduction():
		return deps, fmt.Errorf("image generator: %w", err)
	default:
		middleware.Logger.Warn("Image generation disabled", "error", err)
		deps.Generator = imagegen.Unavailable{Err: err}
	}

	up, err := storage.New(ctx, cfg)
	if err != nil {
		return deps, fmt.Errorf("storage backend: %w", err)
	}
	deps.Uploader = up
	return deps, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps Deps) (*Server, error) {
	if deps.Generator == nil || deps.Uploader == nil {
		return nil, errors.New("server: image generator and uploader are required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("foodcrimes-api"),
		catalogRepo:    repository.NewCatalogRepository(db),
		suggestionRepo: repository.NewSuggestionRepository(db),
		imageRepo:      repository.NewDailyImageRepository(db),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	if local, ok := deps.Uploader.(*storage.LocalUploader); ok {
		s.uploadsDir = local.Dir()
	}

	composer := deps.Composer
	if composer == nil {
		scenes := prompt.DefaultScenes()
		if cfg.PromptScenesFile != "" {
			loaded, err := prompt.LoadScenes(cfg.PromptScenesFile)
			if err != nil {
				return nil, err
			}
			scenes = loaded
		}
		composer = prompt.NewComposer(s.catalogRepo, scenes, nil)
	}

	s.duplicateService = service.NewDuplicateService(s.catalogRepo, s.featureFlags)
	s.moderationService = service.NewModerationService(db, s.suggestionRepo, s.catalogRepo, s.notifier)
	s.dailyImageService = service.NewDailyImageService(db, s.imageRepo, composer,
		deps.Generator, deps.Uploader, s.featureFlags, s.notifier,
		service.DailyImageOptions{
			GenerationTimeout: cfg.ImageGenerationTimeout,
			UploadTimeout:     cfg.ImageUploadTimeout,
			MaxDimension:      cfg.ImageMaxDimension,
			Location:          cfg.Location(),
		})

	return s, nil
}

// DailyImages exposes the job so commands can schedule or trigger it.
func (s *Server) DailyImages() *service.DailyImageService {
	return s.dailyImageService
}

// errorHandler renders errors that escape handlers, including fiber's own.
func errorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Unhandled request error",
			slog.String("path", c.Path()), slog.Any("error", err))
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	if status >= fiber.StatusInternalServerError && !isAppError(err) {
		err = models.NewInternalError(err)
	}
	return models.RespondWithError(c, status, err)
}

func isAppError(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr)
}

// NewApp builds a fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Crimes Against Foodies API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled browsers still see CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

func (s *Server) adminCredentials() middleware.AdminCredentials {
	return middleware.AdminCredentials{
		Username:     s.config.AdminUsername,
		Password:     s.config.AdminPassword,
		PasswordHash: s.config.AdminPasswordHash,
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	admin := []fiber.Handler{middleware.AdminRequired(s.adminCredentials()), middleware.AdminContext()}
	withAdmin := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), h)
	}

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Post("/generate-daily-image", withAdmin(s.GenerateDailyImage)...)

	if s.uploadsDir != "" {
		app.Static("/uploads", s.uploadsDir)
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Crimes Against Foodies Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/foods", s.GetFoods)
	api.Get("/preparations", s.GetPreparations)
	api.Get("/daily-image", s.GetDailyImage)
	api.Get("/daily-images", s.GetDailyImages)

	suggestions := api.Group("/suggestions")
	suggestions.Get("/", withAdmin(s.GetSuggestions)...)
	suggestions.Post("/", s.suggestionRateLimit(), s.CreateSuggestion)
	suggestions.Post("/check_duplicates", s.CheckDuplicates)
	suggestions.Post("/approve", withAdmin(s.ApproveSuggestion)...)
	suggestions.Post("/reject", withAdmin(s.RejectSuggestion)...)
	suggestions.Post("/update", withAdmin(s.UpdateSuggestion)...)

	adminGroup := api.Group("/admin", admin...)
	adminGroup.Get("/feature-flags", s.GetFeatureFlags)
	adminGroup.Get("/ws", s.AdminFeedUpgrade, s.AdminFeedHandler())
}

// suggestionRateLimit throttles public submissions per IP when the
// suggestion_rate_limit flag is on. It fails open without Redis.
func (s *Server) suggestionRateLimit() fiber.Handler {
	limit := middleware.RateLimit(s.redis, 5, 10*time.Minute, "submit_suggestion")
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(featureflags.SuggestionRateLimit, c.IP()) {
			return c.Next()
		}
		return limit(c)
	}
}

// Start builds the app, wires the admin feed and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Warn("failed to start admin feed wiring", "error", err)
	}

	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down admin feed", "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
