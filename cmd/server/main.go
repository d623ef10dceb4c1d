package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/safedine/safedine-backend/config"
	"github.com/safedine/safedine-backend/internal/app/controller"
	"github.com/safedine/safedine-backend/internal/app/repository"
	"github.com/safedine/safedine-backend/internal/app/service"
	"github.com/safedine/safedine-backend/internal/db"
	"github.com/safedine/safedine-backend/internal/middleware"
	"github.com/safedine/safedine-backend/internal/router"
	"github.com/safedine/safedine-backend/internal/scheduler"
	"github.com/safedine/safedine-backend/internal/storage"
	"github.com/safedine/safedine-backend/pkg/logger"
	"github.com/safedine/safedine-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting SafeDine Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize redis; the app degrades to database reads when unavailable
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer redis.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	estRepo := repository.NewEstablishmentRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())
	refRepo := repository.NewReferenceRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	questionBank := service.NewQuestionBank(refRepo)
	reviewService := service.NewReviewService(reviewRepo, estRepo, refRepo, questionBank, db.GetDB())
	estService := service.NewEstablishmentService(estRepo, db.GetDB())

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	establishmentController := controller.NewEstablishmentController(estService)
	reviewController := controller.NewReviewController(reviewService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		establishmentController,
		reviewController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start the nightly stats recompute
	statsScheduler := scheduler.NewStatsScheduler(estService)
	if err := statsScheduler.Start(); err != nil {
		logger.Error("Failed to start stats scheduler", err)
	}
	defer statsScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
