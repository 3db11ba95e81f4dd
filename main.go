package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knowledge-base-api/auth"
	"knowledge-base-api/config"
	"knowledge-base-api/handlers"
	"knowledge-base-api/helper"
	"knowledge-base-api/identity"
	"knowledge-base-api/logger"
	"knowledge-base-api/middleware"
	"knowledge-base-api/repositories"
	"knowledge-base-api/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if cfg.UsesDefaultSecret() {
		logger.Log.Warn("JWT_SECRET is not set, using the built-in development secret")
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Log.Fatalw("failed to connect to database", "error", err)
	}

	store := repositories.NewStore(db)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	var verifier identity.Verifier
	if cfg.KratosPublicURL != "" {
		verifier = identity.NewKratosVerifier(cfg.KratosPublicURL, cfg.KratosTimeout)
		logger.Log.Infow("session verification enabled", "kratos_url", cfg.KratosPublicURL)
	}

	// Initialize services
	articleService := services.NewArticleService(store)
	feedbackService := services.NewFeedbackService(store)
	authService := services.NewAuthService(store, jwtManager)
	identityService := services.NewIdentityService(store, jwtManager, verifier)
	userService := services.NewUserService(store)
	tagService := services.NewTagService(store)
	categoryService := services.NewCategoryService(store)

	// Initialize handlers
	h := helper.New()
	router := handlers.NewRouter(handlers.Handlers{
		Articles:   handlers.NewArticleHandler(articleService, h),
		Feedback:   handlers.NewFeedbackHandler(feedbackService, h),
		Auth:       handlers.NewAuthHandler(authService, identityService, h),
		Users:      handlers.NewUserHandler(userService, h),
		Tags:       handlers.NewTagHandler(tagService, h),
		Categories: handlers.NewCategoryHandler(categoryService, h),
	}, handlers.RouterOptions{
		JWTManager:  jwtManager,
		CORSOrigins: cfg.CORSOrigins,
		AuthLimiter: middleware.NewRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Log.Infow("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorw("server forced to shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Log.Info("server exited")
}
