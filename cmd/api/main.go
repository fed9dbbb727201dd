package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bulletin-app/bulletin-api/internal/auth"
	"github.com/bulletin-app/bulletin-api/internal/config"
	"github.com/bulletin-app/bulletin-api/internal/database"
	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/handler"
	"github.com/bulletin-app/bulletin-api/internal/middleware"
	"github.com/bulletin-app/bulletin-api/internal/models"
	"github.com/bulletin-app/bulletin-api/internal/repository"
	"github.com/bulletin-app/bulletin-api/internal/router"
	"github.com/bulletin-app/bulletin-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := dto.RegisterValidations(validate); err != nil {
		log.Fatalf("failed to register validations: %v", err)
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	denylist := auth.NewRedisDenylist(redisClient)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	kpiRepo := repository.NewKPIRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, validate, hasher, tokens, denylist, activityService, logger)
	postService := service.NewPostService(postRepo, validate, activityService, logger)
	userService := service.NewUserService(userRepo, validate, hasher, activityService, logger)
	kpiService := service.NewKPIService(kpiRepo, validate, redisClient, cfg.KPICacheTTL, logger)
	exportService := service.NewExportService(postRepo, validate, activityService, cfg.ExportRowLimit, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	postHandler := handler.NewPostHandler(postService, exportService, kpiService, logger)
	userHandler := handler.NewUserHandler(userService, kpiService, logger)
	activityHandler := handler.NewActivityLogHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		PostHandler:        postHandler,
		UserHandler:        userHandler,
		ActivityLogHandler: activityHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret, denylist, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
