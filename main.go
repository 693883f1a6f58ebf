package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"review-trophy-service/config"
	"review-trophy-service/handlers"
	"review-trophy-service/middleware"
	"review-trophy-service/models"
	"review-trophy-service/services"
	"review-trophy-service/utils"
	"review-trophy-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ReviewRequest{},
		&models.Trophy{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	registry := services.DefaultRegistry()
	trophyService := services.NewTrophyService(db, registry, logger)

	icons, err := utils.NewIconStore(ctx, utils.R2Options{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		Bucket:          cfg.R2Bucket,
		CDNBaseURL:      cfg.CDNBaseURL,
	}, cfg.StaticURL)
	if err != nil {
		logger.Fatal("failed to initialize icon store", zap.Error(err))
	}
	if cfg.R2Enabled() {
		logger.Info("🪣 Trophy icons served from R2", zap.String("bucket", cfg.R2Bucket))
		if err := icons.PublishIcons(ctx, cfg.IconDir, registry.Kinds()); err != nil {
			logger.Warn("⚠️ Failed to publish trophy icons", zap.Error(err))
		}
	} else {
		logger.Info("🖼️ Trophy icons served from static media", zap.String("static_url", cfg.StaticURL))
	}

	app := fiber.New()

	app.Use(middleware.RequestIDMiddleware())
	// 🔐❗ GLOBAL: Only Gateway requests allowed
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken, logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupMetricsRoutes(app)
	handlers.SetupTrophyRoutes(app, trophyService, icons, logger)

	if cfg.ReviewServiceURL != "" {
		syncWorker := workers.NewReviewRequestSyncWorker(db, trophyService,
			cfg.ReviewServiceURL, cfg.ServiceToken, cfg.SyncInterval, utils.HTTPClient, logger)
		syncWorker.Start(ctx)
	} else {
		logger.Warn("⚠️  REVIEW_SERVICE_URL not set, review request sync disabled")
	}

	sched, err := trophyService.StartBackfillScheduler(cfg.BackfillInterval, cfg.BackfillWindow)
	if err != nil {
		logger.Fatal("failed to start backfill scheduler", zap.Error(err))
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}()

	logger.Info("✅ Server running", zap.String("port", cfg.Port))
	logger.Info("✅ Trophy backfill running", zap.Duration("every", cfg.BackfillInterval))
	logger.Info("✅ CORS configured", zap.Strings("origins", cfg.AllowedOrigins))

	<-ctx.Done()
	logger.Info("Shutting down server...")
	_ = sched.Shutdown()
	_ = app.ShutdownWithTimeout(10 * time.Second)
}
