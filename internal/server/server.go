// Package server contains the HTTP handlers and page rendering for the blog.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	pages          cache.PageStore
	images         *storage.ImageStore
	views          *Views
	feedService    *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	userService    *service.UserService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case the page cache lives in process memory
// and logout cannot revoke sessions server-side.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	images, err := storage.NewDiskImageStore(cfg.MediaRoot, int64(cfg.MaxUploadMB)<<20)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}
	s := newServer(cfg, db, redisClient, cache.NewPageStore(redisClient), images)
	if err := s.views.Load(); err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return s, nil
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, pages cache.PageStore, images *storage.ImageStore) *Server {
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell"),
		pages:          pages,
		images:         images,
		views:          NewViews(),
	}
	s.feedService = service.NewFeedService(postRepo, groupRepo, userRepo, followRepo, cfg.PostsPerPage)
	s.postService = service.NewPostService(postRepo, groupRepo, commentRepo, images, cfg.PostEditRequireAuthor)
	s.commentService = service.NewCommentService(commentRepo, postRepo)
	s.followService = service.NewFollowService(userRepo, followRepo)
	s.userService = service.NewUserService(userRepo)

	middleware.Logger.Info("Server configured",
		slog.String("page_cache", pages.Kind()),
		slog.Int("posts_per_page", cfg.PostsPerPage),
		slog.Int("index_cache_seconds", cfg.IndexCacheSeconds),
		slog.Bool("post_edit_require_author", cfg.PostEditRequireAuthor),
	)
	return s
}

// App builds the fiber application with middleware and routes attached.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Inkwell",
		Views:        s.views,
		ViewsLayout:  layoutTemplate,
		ErrorHandler: s.ErrorHandler,
		BodyLimit:    (s.config.MaxUploadMB + 1) << 20,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Session must resolve before the context middleware copies userID.
	app.Use(s.OptionalAuth())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/media/") || strings.HasPrefix(p, "/health/") || p == "/metrics"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, middleware.TooManyAttemptsMessage)
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		middleware.RegisterMetricsRoute(app, s.promMiddleware)
	}

	app.Use("/media", filesystem.New(filesystem.Config{
		Root:   afero.NewHttpFs(s.images.Fs()).Dir("/"),
		MaxAge: 3600,
	}))

	app.Get("/", s.pageCacheMetrics, s.indexPageCache(), s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/profile/:username/", s.Profile)
	app.Get("/posts/:id/", s.PostDetail)

	login := s.LoginRequired()
	app.Get("/create/", login, s.CreatePostForm)
	app.Post("/create/", login, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	app.Get("/posts/:id/edit/", login, s.EditPostForm)
	app.Post("/posts/:id/edit/", login, s.EditPost)
	app.Post("/posts/:id/comment/", login, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.AddComment)
	app.Get("/follow/", login, s.FollowIndex)
	app.Get("/profile/:username/follow/", login, s.ProfileFollow)
	app.Get("/profile/:username/unfollow/", login, s.ProfileUnfollow)

	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupForm)
	auth.Post("/signup/", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Get("/login/", s.LoginForm)
	auth.Post("/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/logout/", s.Logout)
	auth.Get("/change_password/", login, s.PasswordChangeForm)
	auth.Post("/change_password/", login, middleware.RateLimit(s.redis, 10, 5*time.Minute, "change_password"), s.PasswordChange)

	about := app.Group("/about")
	about.Get("/author/", s.staticPage("about/author"))
	about.Get("/tech/", s.staticPage("about/tech"))
}

// indexPageCache caches the rendered main feed under one fixed key for the
// configured TTL, whatever the page parameter or viewer. A zero TTL disables it.
func (s *Server) indexPageCache() fiber.Handler {
	ttl := time.Duration(s.config.IndexCacheSeconds) * time.Second
	return fibercache.New(fibercache.Config{
		Next: func(*fiber.Ctx) bool {
			return ttl <= 0
		},
		Expiration:  ttl,
		CacheHeader: "X-Cache",
		KeyGenerator: func(*fiber.Ctx) string {
			return cache.IndexPageKey
		},
		Storage: s.pages,
	})
}

// pageCacheMetrics counts the hit/miss result the cache middleware reports.
// The request Cache-Control header is dropped first so a hard reload cannot
// bypass or overwrite the cached page.
func (s *Server) pageCacheMetrics(c *fiber.Ctx) error {
	c.Request().Header.Del(fiber.HeaderCacheControl)
	err := c.Next()
	if result := strings.ToLower(string(c.Response().Header.Peek("X-Cache"))); result != "" {
		observability.PageCacheRequests.WithLabelValues(result).Inc()
	}
	return err
}

// ClearPageCache drops every cached page immediately.
func (s *Server) ClearPageCache() error {
	return s.pages.Reset()
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it the page cache falls back to memory and the app stays ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database":   dbStatus,
			"redis":      redisStatus,
			"page_cache": s.pages.Kind(),
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
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
