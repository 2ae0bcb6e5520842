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

	"github.com/teachme-ai/teachme-api/internal/config"
	"github.com/teachme-ai/teachme-api/internal/database"
	"github.com/teachme-ai/teachme-api/internal/handler"
	"github.com/teachme-ai/teachme-api/internal/middleware"
	"github.com/teachme-ai/teachme-api/internal/models"
	"github.com/teachme-ai/teachme-api/internal/repository"
	"github.com/teachme-ai/teachme-api/internal/router"
	"github.com/teachme-ai/teachme-api/internal/service"
	cloud "github.com/teachme-ai/teachme-api/pkg/cloudinary"
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

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.ProgressRecord{},
		&models.Invitation{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, running without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, enrollment events disabled")
		natsConn = nil
	} else {
		defer natsConn.Drain()
	}

	var storage service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured, avatar uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	studentService := service.NewStudentService(userRepo, enrollmentRepo, courseRepo, progressRepo, redisClient, cfg.SummaryCacheTTL, cfg.FanOutLimit, logger)
	progressService := service.NewProgressService(userRepo, enrollmentRepo, courseRepo, progressRepo, redisClient, cfg.SummaryCacheTTL, cfg.FanOutLimit, logger)
	invitationService := service.NewInvitationService(invitationRepo, courseRepo, natsConn, validate, logger)
	profileService := service.NewProfileService(userRepo, storage, validate, cfg.AvatarMaxSizeMB, logger)

	studentHandler := handler.NewStudentHandler(studentService, progressService, auditService, logger)
	invitationHandler := handler.NewInvitationHandler(invitationService, auditService, logger)
	profileHandler := handler.NewProfileHandler(profileService, auditService, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:    studentHandler,
		InvitationHandler: invitationHandler,
		ProfileHandler:    profileHandler,
		AuditHandler:      auditHandler,
		JWTMiddleware:     middleware.JWTIdentity(cfg.JWTSecret),
		AuditMiddleware:   middleware.Audit(auditService),
		SearchRateLimit:   middleware.RateLimit("students_search", cfg.SearchRateLimit, cfg.SearchRateWindow),
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
