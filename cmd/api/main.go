package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"teamline/internal/adapter/api"
	"teamline/internal/adapter/api/handler"
	apimiddleware "teamline/internal/adapter/api/middleware"
	"teamline/internal/adapter/api/router"
	"teamline/internal/adapter/repository"
	"teamline/internal/infrastructure/database"
	"teamline/internal/infrastructure/realtime"
	"teamline/internal/infrastructure/storage"
	"teamline/internal/usecase"
	"teamline/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	broker, err := realtime.NewNatsBroker(cfg.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer broker.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.StorageProject, cfg.StorageCredentials)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	messageRepo := repository.NewPostgresMessageRepository(pool)
	userRepo := repository.NewPostgresUserRepository(pool)

	authorizer := realtime.NewAuthorizer(cfg.RealtimeAppKey, cfg.RealtimeSecret)
	hub := realtime.NewHub(broker, authorizer)
	publisher := realtime.NewPublisher(broker)

	messageUseCase := usecase.NewMessageUseCase(messageRepo, userRepo, publisher)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(cfg.JWTSecret)

	messageHandler := handler.NewMessageHandler(messageUseCase)
	userHandler := handler.NewUserHandler(messageUseCase)
	fileHandler := handler.NewFileHandler(storageClient, cfg.MaxUploadSize)
	realtimeHandler := handler.NewRealtimeHandler(hub, authorizer, authMiddleware)

	router.Setup(e, authMiddleware, messageHandler, userHandler, fileHandler, realtimeHandler)

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
