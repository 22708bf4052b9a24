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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/edulens/engagement-api/internal/analytics"
	"github.com/edulens/engagement-api/internal/config"
	"github.com/edulens/engagement-api/internal/database"
	"github.com/edulens/engagement-api/internal/handler"
	"github.com/edulens/engagement-api/internal/ingest"
	"github.com/edulens/engagement-api/internal/middleware"
	"github.com/edulens/engagement-api/internal/models"
	"github.com/edulens/engagement-api/internal/repository"
	"github.com/edulens/engagement-api/internal/router"
	"github.com/edulens/engagement-api/internal/service"
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

	if err := db.AutoMigrate(&models.Course{}, &models.CourseModule{}, &models.User{}, &models.LogEvent{}, &models.GradeItem{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	registry, err := analytics.DefaultRegistry()
	if err != nil {
		log.Fatalf("failed to build activity registry: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	moduleRepo := repository.NewCourseModuleRepository(db)
	eventRepo := repository.NewLogEventRepository(db)
	gradeRepo := repository.NewGradeItemRepository(db)

	engagementService := service.NewEngagementService(registry, moduleRepo, eventRepo, gradeRepo, redisClient, cfg.ScoreCacheTTL, logger)
	engagementHandler := handler.NewEngagementHandler(engagementService, validate, logger)

	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Close()

		consumer, err := ingest.NewConsumer(conn, cfg.EventSubject, eventRepo, logger)
		if err != nil {
			log.Fatalf("failed to create event consumer: %v", err)
		}
		if err := consumer.Start(); err != nil {
			log.Fatalf("failed to start event consumer: %v", err)
		}
		defer consumer.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EngagementHandler: engagementHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
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
