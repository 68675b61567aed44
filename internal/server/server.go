// Package server contains the HTTP handlers for the bloglist API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "bloglist/docs" // swagger docs
	"bloglist/internal/bootstrap"
	"bloglist/internal/cache"
	"bloglist/internal/config"
	"bloglist/internal/database"
	"bloglist/internal/middleware"
	"bloglist/internal/models"
	"bloglist/internal/notifications"
	"bloglist/internal/repository"
	"bloglist/internal/service"
	"bloglist/internal/tokens"

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

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	runtime        *bootstrap.Runtime
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	cache          *cache.Cache
	notifier       *notifications.Notifier
	userService    *service.UserService
	blogService    *service.BlogService
}

// NewServer builds the runtime from cfg (database, Redis, tracing, root user) and a
// server on top of it.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	s, err := NewServerWithDeps(cfg, rt.DB, rt.Redis)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	s.runtime = rt
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case caching, rate limiting and events are off.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	userRepo := repository.NewUserRepository(db)
	blogRepo := repository.NewBlogRepository(db)

	shutdownCtx, shutdownFn := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("bloglist-api"),
		shutdownCtx:    shutdownCtx,
		shutdownFn:     shutdownFn,
		cache:          cache.New(redisClient),
		notifier:       notifications.NewNotifier(redisClient),
	}

	s.userService = service.NewUserService(userRepo, tokens.NewService(cfg.JWTSecret, cfg.TokenTTL))
	s.blogService = service.NewBlogService(
		blogRepo,
		userRepo,
		repository.NewTxManager(db),
		s.cache,
		s.notifier,
		cfg.RequireOwnerOnUpdate,
	)

	if redisClient != nil {
		if err := s.notifier.StartBlogSubscriber(shutdownCtx, s.logBlogEvent); err != nil {
			middleware.Logger.Warn("blog event subscriber not started", slog.String("error", err.Error()))
		}
	}

	return s, nil
}

// NewFiberApp returns a Fiber app whose stray errors render as the JSON error envelope.
func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "Bloglist API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})
}

// ErrorHandler renders errors that escaped a handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		var appErr *models.AppError
		if fe.Code == fiber.StatusNotFound {
			appErr = &models.AppError{Code: models.CodeNotFound, Message: "unknown endpoint"}
		} else {
			appErr = &models.AppError{Code: codeForStatus(fe.Code), Message: fe.Message}
		}
		return models.RespondWithError(c, fe.Code, appErr)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, models.StatusFor(err), err)
}

func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case status == fiber.StatusNotFound:
		return models.CodeNotFound
	case status >= 400 && status < 500:
		return models.CodeValidation
	default:
		return models.CodeInternal
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before ContextMiddleware so the trace ID reaches the logger.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(middleware.TokenExtractor())

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.IsTest()
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Bloglist Backend Metrics Dashboard",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	blogs := api.Group("/blogs")
	blogs.Get("/", s.GetBlogs)
	// Static segments before the generic /:id routes.
	blogs.Get("/stats", s.GetBlogStats)
	blogs.Post("/", s.CreateBlog)
	blogs.Post("/:id/comments", s.AddComment)
	blogs.Get("/:id", s.GetBlog)
	blogs.Put("/:id", s.UpdateBlog)
	blogs.Delete("/:id", s.DeleteBlog)

	users := api.Group("/users")
	users.Post("/", middleware.RateLimit(s.redis, s.config.Env, 5, 10*time.Minute, "signup"), s.CreateUser)
	users.Get("/", s.GetUsers)
	users.Get("/:id", s.GetUser)

	api.Post("/login", middleware.RateLimit(s.redis, s.config.Env, 10, 5*time.Minute, "login"), s.Login)

	if s.config.IsTest() {
		api.Post("/testing/reset", s.ResetTestingData)
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: a server started
// without it is still ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

func (s *Server) logBlogEvent(ev notifications.BlogEvent) {
	middleware.Logger.Info("blog event",
		slog.String("type", ev.Type),
		slog.Uint64("blog_id", uint64(ev.BlogID)),
		slog.Uint64("user_id", uint64(ev.UserID)),
	)
}

// Shutdown stops background work and releases the runtime this server created.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	if s.runtime != nil {
		if err := s.runtime.Close(ctx); err != nil {
			return fmt.Errorf("runtime shutdown: %w", err)
		}
	}
	return nil
}
