// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	_ "inkwell/docs" // swagger docs
	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/events"
	"inkwell/internal/featureflags"
	"inkwell/internal/media"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	defaultOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	bodyLimit      = 12 * 1024 * 1024
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// httpMetrics returns the process-wide Prometheus middleware. The collectors live in
// the default registry and can only be registered once.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("inkwell-api")
	})
	return prom
}

// Deps are the already-initialized resources a Server is built from.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	// Notifier receives outgoing email. When nil the server starts its own Mailer
	// from the SMTP settings.
	Notifier notifications.Notifier
}

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	app    *fiber.App

	authn  *middleware.Authenticator
	bus    *events.Bus
	hub    *notifications.Hub
	mailer *notifications.Mailer
	flags  *featureflags.Manager
	media  *media.Service

	accounts *service.AccountService
	social   *service.SocialService
	posts    *service.PostService
	comments *service.CommentService
	replies  *service.ReplyService
	likes    *service.LikeService
}

// NewServer wires services, subscribers and routes on top of deps.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("server: database is required")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	revoker := auth.NewRevoker(deps.Redis)
	store := repository.NewStore(deps.DB)

	s := &Server{
		config: cfg,
		db:     deps.DB,
		redis:  deps.Redis,
		authn:  middleware.NewAuthenticator(tokens, revoker),
		bus:    events.NewBus(),
		hub:    notifications.NewHub(),
		flags:  featureflags.NewManager(cfg.FeatureFlags),
	}
	s.media = media.NewService(cfg.MediaDir, cfg.MediaMaxUploadSizeMB, s.flags)

	s.accounts = service.NewAccountService(store, tokens,
		auth.NewVerificationSigner(cfg.JWTSecret, cfg.VerifyTTL()), revoker, s.bus, cfg.ResetTTL())
	s.social = service.NewSocialService(store, s.bus)
	s.posts = service.NewPostService(store)
	s.comments = service.NewCommentService(store, s.bus)
	s.replies = service.NewReplyService(store, s.bus)
	s.likes = service.NewLikeService(store, s.bus)

	notifier := deps.Notifier
	if notifier == nil {
		s.mailer = notifications.NewMailer(mailSender(cfg), cfg.MailWorkers, cfg.MailQueueSize)
		notifier = s.mailer
	}
	notifications.RegisterMail(s.bus, notifier, notifications.Links{BaseURL: cfg.AppURL, ResetTTL: cfg.ResetTTL()})
	notifications.RegisterRealtime(s.bus, s.hub, s.flags)

	s.app = fiber.New(fiber.Config{
		AppName:      "Inkwell API",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)

	return s, nil
}

func mailSender(cfg *config.Config) notifications.Sender {
	if cfg.SMTPHost == "" {
		return notifications.LogSender{Logger: middleware.Logger}
	}
	return notifications.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
}

// App returns the configured Fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(httpMetrics().Middleware)
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/health")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Status:  fiber.StatusTooManyRequests,
				Message: "Too many requests, please try again later.",
				Error:   models.ErrorDetail{Code: "RATE_LIMITED"},
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	httpMetrics().RegisterAt(app, "/metrics")
	app.Static("/media", s.media.Root(), fiber.Static{MaxAge: 3600})

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	required := s.authn.Required()
	optional := s.authn.Optional()

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", s.Signup)
	authGroup.Post("/login", s.Login)
	authGroup.Post("/token/refresh", s.RefreshToken)
	authGroup.Post("/logout", required, s.Logout)
	authGroup.Post("/email-verify/request", s.RequestVerification)
	authGroup.Post("/email-verify", s.VerifyEmail)
	authGroup.Post("/password-reset/request", s.RequestPasswordReset)
	authGroup.Post("/password-reset", s.ResetPassword)

	user := api.Group("/user", required)
	user.Get("/me", s.GetMe)
	user.Patch("/me", s.UpdateMe)
	user.Get("/follow-unfollow", s.GetFollowStatus)
	user.Post("/follow-unfollow", s.FollowUnfollow)

	api.Get("/people", optional, s.ListPeople)
	api.Get("/people/:uuid", optional, s.GetPerson)
	api.Get("/followers/:uuid", optional, s.ListFollowers)
	api.Get("/following/:uuid", optional, s.ListFollowing)

	api.Get("/blogs", optional, s.ListPosts)
	api.Post("/blogs", required, s.CreatePost)
	api.Get("/blogs/:ref", optional, s.GetPost)
	api.Patch("/blogs/:ref", required, s.UpdatePost)
	api.Delete("/blogs/:ref", required, s.DeletePost)

	// Static /blog/comments/... and /blog/likes/... segments are registered
	// before the /blog/:uuid/... patterns.
	blog := api.Group("/blog")
	blog.Get("/comments/reply/:uuid", optional, s.GetReply)
	blog.Patch("/comments/reply/:uuid", required, s.UpdateReply)
	blog.Delete("/comments/reply/:uuid", required, s.DeleteReply)
	blog.Get("/comments/likes/:uuid", optional, s.GetCommentLike)
	blog.Delete("/comments/likes/:uuid", required, s.DeleteCommentLike)
	blog.Get("/comments/:uuid/reply", optional, s.ListReplies)
	blog.Post("/comments/:uuid/reply", required, s.CreateReply)
	blog.Get("/comments/:uuid/likes", optional, s.ListCommentLikes)
	blog.Post("/comments/:uuid/likes", required, s.LikeComment)
	blog.Get("/comments/:uuid", optional, s.GetComment)
	blog.Patch("/comments/:uuid", required, s.UpdateComment)
	blog.Delete("/comments/:uuid", required, s.DeleteComment)
	blog.Get("/likes/:uuid", optional, s.GetPostLike)
	blog.Delete("/likes/:uuid", required, s.DeletePostLike)
	blog.Get("/:uuid/comments", optional, s.ListComments)
	blog.Post("/:uuid/comments", required, s.CreateComment)
	blog.Get("/:uuid/likes", optional, s.ListPostLikes)
	blog.Post("/:uuid/likes", required, s.LikePost)

	api.Post("/media/images", required, s.UploadImage)

	api.Get("/ws", s.authn.WebSocket(), s.WebsocketHandler())

	app.Use(func(c *fiber.Ctx) error {
		return models.RespondWithError(c, &models.AppError{
			Code:    models.CodeNotFound,
			Message: "Route not found.",
		})
	})
}

// errorHandler turns errors escaping handlers and middleware, including recovered
// panics, into envelopes.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return models.RespondWithError(c, &models.AppError{Code: models.CodeNotFound, Message: "Route not found."})
		}
		if fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(models.Envelope{
				Status:  fe.Code,
				Message: fe.Message,
				Error:   models.ErrorDetail{Code: strings.ToUpper(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))},
			})
		}
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithError(c, models.NewInternalError(err))
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, fiber.Map{"status": "up", "time": time.Now()}, "Alive")
}

// ReadinessCheck reports whether the database and, when configured, Redis respond.
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

	checks := fiber.Map{"database": dbStatus, "redis": redisStatus}
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.Envelope{
			Status:  fiber.StatusServiceUnavailable,
			Data:    checks,
			Message: "Not ready",
			Error:   models.ErrorDetail{Code: "UNAVAILABLE"},
		})
	}
	return models.Respond(c, fiber.StatusOK, checks, "Ready")
}

// Listen serves HTTP on the configured port until Shutdown.
func (s *Server) Listen() error {
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, closes realtime connections and drains the
// mail queue. The database and Redis clients belong to the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.mailer != nil {
		if err := s.mailer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
