package app

import (
	"context"
	"fmt"
	"time"

	"burnlink_backend/database"
	"burnlink_backend/internal/config"
	"burnlink_backend/internal/email"
	"burnlink_backend/internal/handlers"
	"burnlink_backend/internal/logger"
	"burnlink_backend/internal/middleware"
	"burnlink_backend/internal/repositories"
	"burnlink_backend/internal/routes"
	"burnlink_backend/internal/services"
	"burnlink_backend/internal/storage"
	"burnlink_backend/internal/validator"
	"burnlink_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter, reaper := SetupRouter(cfg, gormDB)

	// Фоновый реапер истекших записей
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reaper.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает все зависимости и возвращает готовый gin.Engine
// вместе с реапером (его запуск остается за вызывающим)
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.ReaperWorker) {
	blobStorage, err := storage.NewBlobStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// --- Инициализация репозиториев ---
	burnRepo := repositories.NewBurnRepository(gormDB)
	attemptRepo := repositories.NewDownloadAttemptRepository(gormDB)

	// --- Уведомления ---
	var notifier email.Notifier
	if cfg.Email.Enabled {
		notifier = email.NewSMTPNotifier(cfg)
	} else {
		notifier = email.NoopNotifier{}
	}

	// --- Сервисы и хендлеры ---
	burnService := services.NewBurnService(burnRepo, attemptRepo, blobStorage, notifier, cfg)

	baseHandler := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		BurnHandler: handlers.NewBurnHandler(baseHandler, burnService),
	}

	// --- Gin ---
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestIDMiddleware())
	ginRouter.Use(middleware.LoggingMiddleware())
	ginRouter.Use(middleware.CORSMiddleware())

	routes.RegisterRoutes(ginRouter, appHandlers)

	reaper := workers.NewReaperWorker(burnRepo, blobStorage,
		time.Duration(cfg.Burn.ReaperInterval)*time.Second)

	return ginRouter, reaper
}
