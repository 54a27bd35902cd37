// Package server contains the HTTP handlers for the Warbler JSON API.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "warbler/docs" // swagger docs
	"warbler/internal/config"
	"warbler/internal/credentials"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
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
	store          *repository.Store
	sessions       *session.Manager
	userService    *service.UserService
	messageService *service.MessageService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	store := repository.NewStore(db)
	hasher := credentials.NewHasher(cfg.BcryptCost)
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("warbler-api"),
		store:          store,
		sessions:       session.NewManager(cfg.SessionSecret, ttl, redisClient),
		userService:    service.NewUserService(store, hasher),
		messageService: service.NewMessageService(store),
	}
	return s, nil
}

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName: "Warbler API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(s.Identify())
}

func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	authLimit := s.config.RateLimitPerMinute
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, authLimit, time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, authLimit, time.Minute, "login"), s.Login)
	auth.Post("/logout", s.RequireUser(), s.Logout)

	api.Get("/home", s.Home)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Post("/follow/:id", s.RequireUser(), s.FollowUser)
	users.Post("/stop-following/:id", s.RequireUser(), s.StopFollowing)
	users.Patch("/profile", s.RequireUser(), s.UpdateProfile)
	users.Delete("/", s.RequireUser(), s.DeleteAccount)
	users.Get("/:id/following", s.RequireUser(), s.GetFollowing)
	users.Get("/:id/followers", s.RequireUser(), s.GetFollowers)
	users.Get("/:id/likes", s.RequireUser(), s.GetLikes)
	users.Get("/:id", s.GetUserProfile)

	messages := api.Group("/messages")
	messages.Post("/", s.RequireUser(), s.CreateMessage)
	messages.Get("/:id", s.GetMessage)
	messages.Delete("/:id", s.RequireUser(), s.DeleteMessage)
	messages.Post("/:id/like", s.RequireUser(), s.LikeMessage)
	messages.Delete("/:id/like", s.RequireUser(), s.UnlikeMessage)
	messages.Post("/:id/toggle-like", s.RequireUser(), s.ToggleLike)
}

// HealthCheck handles GET /api/health
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} object{status=string,database=string,redis=string}
// @Failure 503 {object} object{status=string,database=string,redis=string}
// @Router /health [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
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
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now().UTC(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
