// Package server contains the HTTP transport for the application's API
// endpoints. Handlers are thin adapters: they parse requests, call services,
// and map returned errors to responses.
package server

import (
	"context"
	"fmt"
	"time"

	"commons/internal/authz"
	"commons/internal/cache"
	"commons/internal/config"
	"commons/internal/database"
	"commons/internal/featureflags"
	"commons/internal/identity"
	"commons/internal/middleware"
	"commons/internal/models"
	"commons/internal/repository"
	"commons/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	cache             *cache.Cache
	app               *fiber.App
	resolver          identity.Resolver
	featureFlags      *featureflags.Manager
	userRepo          repository.UserRepository
	communityRepo     repository.CommunityRepository
	membershipRepo    repository.MembershipRepository
	postRepo          repository.PostRepository
	commentRepo       repository.CommentRepository
	likeRepo          repository.LikeRepository
	chatRepo          repository.ChatRepository
	communityService  *service.CommunityService
	membershipService *service.MembershipService
	postService       *service.PostService
	commentService    *service.CommentService
	likeService       *service.LikeService
	chatService       *service.ChatService
	userService       *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.New(cfg.RedisURL)), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, c *cache.Cache) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		cache:          c,
		resolver:       identity.NewJWTResolver(cfg.JWTSecret),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       repository.NewUserRepository(db),
		communityRepo:  repository.NewCommunityRepository(db),
		membershipRepo: repository.NewMembershipRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		chatRepo:       repository.NewChatRepository(db),
	}

	kernel := authz.NewKernel(s.communityRepo, s.membershipRepo)
	s.chatService = service.NewChatService(s.chatRepo, kernel)
	s.communityService = service.NewCommunityService(
		s.communityRepo, s.membershipRepo, kernel, c,
		func(ctx context.Context, communityID uint) error {
			_, err := s.chatService.CreateDefaultRoom(ctx, communityID)
			return err
		},
	)
	s.membershipService = service.NewMembershipService(
		s.membershipRepo, s.communityRepo, s.userRepo, kernel, c)
	s.postService = service.NewPostService(s.postRepo, kernel)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, kernel)
	s.likeService = service.NewLikeService(s.likeRepo, s.postRepo, kernel, c)
	s.userService = service.NewUserService(s.userRepo)

	return s
}

// mirrorIdentity is the auth middleware hook that keeps provider-issued
// accounts present in the local user table.
func (s *Server) mirrorIdentity(c *fiber.Ctx, ident *identity.Identity) error {
	return s.userService.EnsureUser(c.UserContext(), ident)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5173,http://localhost:3000",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	authRequired := middleware.AuthRequired(s.resolver, s.mirrorIdentity)
	authOptional := middleware.AuthOptional(s.resolver, s.mirrorIdentity)

	// Public community browsing. Detail and post listings accept an optional
	// credential so member/owner annotations and gated content resolve.
	api.Get("/flags", authOptional, s.GetFeatureFlags)

	communities := api.Group("/communities")
	communities.Get("/", s.GetCommunities)
	communities.Get("/:id/posts", authOptional, s.GetCommunityPosts)
	communities.Get("/:id", authOptional, s.GetCommunity)

	// Protected routes
	protected := api.Group("", authRequired)

	protectedCommunities := protected.Group("/communities")
	protectedCommunities.Post("/", s.CreateCommunity)
	// Specific /:id/:resource routes BEFORE generic /:id routes
	protectedCommunities.Post("/:id/join", s.JoinCommunity)
	protectedCommunities.Delete("/:id/leave", s.LeaveCommunity)
	protectedCommunities.Get("/:id/membership", s.GetMembershipStatus)
	protectedCommunities.Get("/:id/members", s.GetCommunityMembers)
	protectedCommunities.Put("/:id/members/:userId/role", s.UpdateMemberRole)
	protectedCommunities.Post("/:id/posts", s.CreatePost)
	protectedCommunities.Get("/:id/chats", s.GetCommunityChatRooms)
	protectedCommunities.Post("/:id/chats", s.CreateChatRoom)
	protectedCommunities.Put("/:id", s.UpdateCommunity)
	protectedCommunities.Delete("/:id", s.DeleteCommunity)

	posts := protected.Group("/posts")
	posts.Post("/:id/like", s.ToggleLike)
	posts.Get("/:id/like", s.GetLikeStatus)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	comments := protected.Group("/comments")
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	chats := protected.Group("/chats")
	chats.Get("/:id/messages", s.GetChatMessages)
	chats.Post("/:id/messages", s.SendChatMessage)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/me/communities", s.GetMyCommunities)
	users.Get("/:id", s.GetUserProfile)
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Commons API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if err := s.cache.Close(); err != nil {
		middleware.Logger.Error("error closing redis", "error", err)
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
