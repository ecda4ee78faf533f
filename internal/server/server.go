// Package server contains HTTP and WebSocket handlers for the application's
// API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"campus/internal/authz"
	"campus/internal/cache"
	"campus/internal/config"
	"campus/internal/database"
	"campus/internal/featureflags"
	"campus/internal/middleware"
	"campus/internal/models"
	"campus/internal/notifications"
	"campus/internal/observability"
	"campus/internal/repository"
	"campus/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	schoolRepo  repository.SchoolRepository
	assignRepo  repository.AssignmentRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	blockRepo   repository.BlockRepository
	loginStates repository.LoginStateRepository

	trees    *authz.TreeStore
	scopes   *authz.ScopeResolver
	registry *authz.BlockRegistry
	filter   *authz.VisibilityFilter
	locks    *authz.LockTable

	notifier *notifications.Notifier
	hub      *notifications.Hub
	flags    *featureflags.Manager

	authService       *service.AuthService
	schoolService     *service.SchoolService
	postService       *service.PostService
	commentService    *service.CommentService
	moderationService *service.ModerationService
	userService       *service.UserService
}

// NewServer creates a server instance, establishing the database and Redis
// connections itself.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	assignRepo := repository.NewAssignmentRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	loginStates := repository.NewLoginStateRepository(db)

	trees := authz.NewTreeStore(nil)
	scopes := authz.NewScopeResolver(trees, assignRepo)
	registry := authz.NewBlockRegistry(blockRepo, scopes)
	filter := authz.NewVisibilityFilter(registry)
	locks := authz.NewLockTable()

	// The notifier tolerates a nil Redis client, so it is always present.
	notifier := notifications.NewNotifier(redisClient)
	hub := notifications.NewHub()

	prom := middleware.InitMetrics("campus-api")

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		schoolRepo:     schoolRepo,
		assignRepo:     assignRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		blockRepo:      blockRepo,
		loginStates:    loginStates,
		trees:          trees,
		scopes:         scopes,
		registry:       registry,
		filter:         filter,
		locks:          locks,
		notifier:       notifier,
		hub:            hub,
		flags:          featureflags.NewManager(cfg.FeatureFlags),
	}

	s.authService = service.NewAuthService(
		userRepo, loginStates, authz.NewLockoutPolicy(), cfg.JWTSecret, observability.NewAuthLogger())
	s.schoolService = service.NewSchoolService(schoolRepo, trees, scopes)
	s.postService = service.NewPostService(postRepo, trees, locks, filter)
	s.commentService = service.NewCommentService(commentRepo, postRepo, filter)
	// Moderation events reach the hub only while the flag is on; the
	// kill switch silences the fan-out without touching moderation itself.
	var modNotifier service.ModerationNotifier
	if s.flags.Enabled(featureflags.FlagLiveModerationEvents, 0) {
		modNotifier = notifier
	}
	s.moderationService = service.NewModerationService(
		postRepo, commentRepo, blockRepo, registry, scopes, modNotifier, observability.GlobalLogger)
	s.userService = service.NewUserService(userRepo, assignRepo, registry, trees)

	middleware.InitMiddleware(cfg)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Device-ID, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP).
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Campus Backend Metrics Dashboard",
	}))

	// Auth routes. Login and signup fail closed when the rate limit store
	// is unavailable so lockout protection cannot be bypassed.
	loginLimit := s.config.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimitWithPolicy(
		s.redis, 3, 10*time.Minute, middleware.FailClosed, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimitWithPolicy(
		s.redis, loginLimit, time.Minute, middleware.FailClosed, "login"), s.Login)

	// Public school routes. The bare listing returns the nested tree.
	schools := api.Group("/schools")
	schools.Get("/", s.GetSchoolTree)
	schools.Get("/:id/posts", middleware.OptionalAuth, s.GetSchoolFeed)
	schools.Get("/:slug", s.GetSchoolBySlug)

	// Public browse routes resolve the viewer when a token is present so
	// owners and staff see through privacy and moderation states.
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", middleware.OptionalAuth, s.GetFeed)
	publicPosts.Get("/:id/comments", middleware.OptionalAuth, s.GetComments)
	publicPosts.Get("/:id", middleware.OptionalAuth, s.GetPost)

	publicUsers := api.Group("/users")
	publicUsers.Get("/:id/posts", middleware.OptionalAuth, s.GetUserFeed)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// School management (staff only; authorization in the service layer)
	managedSchools := protected.Group("/schools")
	managedSchools.Post("/", s.CreateSchool)
	managedSchools.Put("/:id/parent", s.ReparentSchool)
	managedSchools.Put("/:id", s.UpdateSchool)
	managedSchools.Delete("/:id", s.DeleteSchool)

	// User routes
	users := protected.Group("/users")
	users.Get("/me/flags", s.GetMyFlags)
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/:id/block", s.BlockUserPersonal)
	users.Delete("/:id/block", s.UnblockUserPersonal)
	users.Get("/:id", s.GetUserProfile)

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/lock", s.AcquirePostLock)
	posts.Delete("/:id/lock", s.ReleasePostLock)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Comment routes
	comments := protected.Group("/comments")
	comments.Post("/:id/like", s.LikeComment)
	comments.Delete("/:id/like", s.UnlikeComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Moderation routes (scope enforced in the service layer)
	moderation := protected.Group("/moderation")
	moderation.Post("/posts/:id/hide", s.HidePost)
	moderation.Delete("/posts/:id/hide", s.UnhidePost)
	moderation.Post("/comments/:id/hide", s.HideComment)
	moderation.Delete("/comments/:id/hide", s.UnhideComment)
	moderation.Post("/blocks", s.CreateModeratorBlock)
	moderation.Delete("/blocks/:userId/:schoolId", s.RemoveModeratorBlock)
	moderation.Get("/blocks/:moderatorId", s.ListModeratorBlocks)

	// Websocket notifications
	api.Get("/ws", middleware.WebSocketAuthRequired, s.WebsocketHandler())

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Post("/moderators/:id", s.AssignModerator)
	admin.Delete("/moderators/:id", s.RevokeModerator)
	admin.Post("/users/:id/unlock", s.UnlockAccount)
	admin.Get("/users/:id/lock-status", s.GetLockStatus)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := s.principal(c)
		if err != nil {
			return s.respondServiceError(c, err)
		}
		if !principal.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Campus API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// The scope resolver and feed expansion read the in-memory tree
	// snapshot; it must be loaded before requests are served.
	if err := s.schoolService.LoadTree(ctx); err != nil {
		return fmt.Errorf("load school tree: %w", err)
	}

	go func() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			log.Printf("failed to start notification wiring: %v", err)
		}
	}()

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		log.Printf("error shutting down notification hub: %v", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
