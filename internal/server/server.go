// Package server contains the HTTP handlers for the legacy REST API and the forum API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "polyglot/docs" // swagger docs
	"polyglot/internal/auth"
	"polyglot/internal/bootstrap"
	"polyglot/internal/chat"
	"polyglot/internal/config"
	"polyglot/internal/database"
	"polyglot/internal/middleware"
	"polyglot/internal/models"
	"polyglot/internal/notifications"
	"polyglot/internal/observability"
	"polyglot/internal/repository"
	"polyglot/internal/service"

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
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	issuer         *auth.Issuer
	verifier       *auth.Verifier
	identities     *auth.ExternalVerifier
	chat           *chat.Client
	postService    *service.PostService
	userService    *service.UserService
	voteService    *service.VoteService
	trending       *service.TrendingService
}

// NewServer connects to the database and Redis, seeds reference languages
// when configured, and wires every dependency. Redis is optional: caching,
// rate limits and events degrade to no-ops without it.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedLanguages: cfg.SeedLanguages})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with SQLite and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	userRepo := repository.NewUserRepository(db)
	languageRepo := repository.NewLanguageRepository(db)
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	notifier := notifications.NewNotifier(redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
		notifier:       notifier,
		issuer:         auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute),
		verifier:       auth.NewVerifier(cfg.JWTSecret),
		identities:     auth.NewExternalVerifier(cfg.ExternalAuthSecret, cfg.ExternalAuthIssuer),
		chat:           chat.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		postService:    service.NewPostService(postRepo, replyRepo, languageRepo, redisClient, notifier),
		userService:    service.NewUserService(userRepo, languageRepo, postRepo, redisClient),
		voteService:    service.NewVoteService(reactionRepo, replyRepo, notifier),
		trending:       service.NewTrendingService(redisClient, postRepo, notifier),
	}
	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Polyglot API",
		BodyLimit:    4 * 1024 * 1024,
		UnescapePath: true,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler answers errors that escaped a handler with the {error} envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before the context middleware so the trace id reaches log records.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS before the limiter so short-circuited responses still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
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
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	s.setupLegacyRoutes(app)

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Polyglot Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public reads
	api.Get("/languages", s.GetLanguages)
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/trending", s.GetTrendingPosts)
	publicPosts.Get("/:id/comments", s.GetPostComments)
	publicPosts.Get("/:id", s.GetPost)

	identified := middleware.ExternalIdentity(s.identities)
	resolved := s.resolveUser()
	// protected prefixes handlers with identity checks per route, so unknown
	// paths under /api still fall through to the not-found handler.
	protected := func(handlers ...fiber.Handler) []fiber.Handler {
		return append([]fiber.Handler{identified, resolved}, handlers...)
	}

	// Reconciliation runs before an internal user necessarily exists.
	api.Post("/users", identified, s.ReconcileUser)

	users := api.Group("/users/me")
	users.Get("/", protected(s.GetMyProfile)...)
	users.Get("/liked-posts", protected(s.GetMyLikedPosts)...)
	users.Get("/languages", protected(s.GetMyLanguages)...)

	posts := api.Group("/posts")
	posts.Post("/", protected(middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)...)
	posts.Post("/:id/comments", protected(middleware.RateLimit(
		s.redis, 10, time.Minute, "create_reply"), s.CreateComment)...)
	posts.Post("/:id/vote", protected(s.VotePost)...)
	posts.Get("/:id/vote", protected(s.GetPostVote)...)

	comments := api.Group("/comments")
	comments.Get("/liked", protected(s.GetLikedComments)...)
	comments.Post("/:id/vote", protected(s.VoteComment)...)

	follows := api.Group("/languages/:name/follow")
	follows.Get("/", protected(s.GetFollowStatus)...)
	follows.Post("/", protected(s.FollowLanguage)...)
	follows.Delete("/", protected(s.UnfollowLanguage)...)

	api.Post("/chat", protected(middleware.RateLimit(
		s.redis, 20, time.Minute, "chat"), s.Chat)...)
	api.Post("/uploads/profile-picture", protected(s.UploadProfilePicture)...)
}

func (s *Server) setupLegacyRoutes(app *fiber.App) {
	app.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.LegacySignup)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.LegacyLogin)

	app.Get("/posts/:languageId", s.LegacyGetPosts)
	app.Get("/replies/:postId", s.LegacyGetReplies)

	authed := middleware.LegacyAuth(s.verifier)
	app.Post("/posts", authed, middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.LegacyCreatePost)
	app.Post("/replies", authed, middleware.RateLimit(
		s.redis, 10, time.Minute, "create_reply"), s.LegacyCreateReply)
	app.Post("/likes", authed, s.LegacyCreateLike)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	// Redis backs optional features only, so a missing client does not fail readiness.
	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"services": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// StartSubscribers starts the event consumers. They stop when Shutdown runs.
func (s *Server) StartSubscribers() error {
	if s.shutdownFn == nil {
		s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	}
	if err := s.trending.Start(s.shutdownCtx); err != nil {
		return fmt.Errorf("start trending subscriber: %w", err)
	}
	return nil
}

// Start listens on the configured port until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	if err := s.StartSubscribers(); err != nil {
		// Trending is optional; the forum works without it.
		middleware.Logger.Warn("event subscribers unavailable", slog.String("error", err.Error()))
	}
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}
	if replica := database.GetReadDB(); replica != nil {
		if sqlDB, err := replica.DB(); err == nil {
			_ = sqlDB.Close()
		}
		database.SetReadDB(nil)
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
