package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/schreiber-platform/schreiber-api/internal/config"
	"github.com/schreiber-platform/schreiber-api/internal/database"
	"github.com/schreiber-platform/schreiber-api/internal/handler"
	"github.com/schreiber-platform/schreiber-api/internal/middleware"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/observability"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
	"github.com/schreiber-platform/schreiber-api/internal/router"
	"github.com/schreiber-platform/schreiber-api/internal/service"
	cloud "github.com/schreiber-platform/schreiber-api/pkg/cloudinary"
)

// blobStorage adapts the cloudinary client to the media storage interface.
type blobStorage struct {
	client *cloud.Service
}

func (b blobStorage) List(ctx context.Context, prefix string) ([]service.BlobItem, error) {
	assets, err := b.client.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	items := make([]service.BlobItem, 0, len(assets))
	for _, asset := range assets {
		items = append(items, service.BlobItem{Name: asset.Name, URL: asset.URL})
	}
	return items, nil
}

func (b blobStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	return b.client.Upload(ctx, name, reader)
}

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
		&models.Tag{},
		&models.Course{},
		&models.CourseTag{},
		&models.Coupon{},
		&models.CoursePackage{},
		&models.CoursePackageCourse{},
		&models.CoursePurchase{},
		&models.PackagePurchase{},
		&models.ModuleResult{},
		&models.WritingTask{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	observability.RegisterMetrics()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	resultRepo := repository.NewModuleResultRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost, logger)
	courseService := service.NewCourseService(courseRepo, redisClient, cfg.CatalogCacheTTL, validate, logger)
	packageService := service.NewPackageService(packageRepo, courseRepo, validate, logger)
	purchaseService := service.NewPurchaseService(purchaseRepo, courseRepo, packageRepo, validate, logger)
	attemptService := service.NewAttemptService(resultRepo, validate, logger)
	taskService := service.NewTaskService(taskRepo, validate, logger)
	mediaService := service.NewMediaService(blobStorage{client: uploader}, logger)
	grammarService := service.NewGrammarService(cfg.GrammarAPIURL, cfg.GrammarTimeout, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	packageHandler := handler.NewPackageHandler(packageService, logger)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService, logger)
	attemptHandler := handler.NewAttemptHandler(attemptService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	mediaHandler := handler.NewMediaHandler(mediaService, logger)
	grammarHandler := handler.NewGrammarHandler(grammarService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:     authHandler,
		CourseHandler:   courseHandler,
		PackageHandler:  packageHandler,
		PurchaseHandler: purchaseHandler,
		AttemptHandler:  attemptHandler,
		TaskHandler:     taskHandler,
		MediaHandler:    mediaHandler,
		GrammarHandler:  grammarHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
		MediaGuard:      middleware.MediaGuard(cfg.JWTSecret, cfg.MediaServiceToken),
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
