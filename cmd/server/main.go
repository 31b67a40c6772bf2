package main

import (
	"alcyxob/fitcoach/internal/api"
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/logging"
	"alcyxob/fitcoach/internal/realtime"
	"alcyxob/fitcoach/internal/repository/mongo"
	"alcyxob/fitcoach/internal/service"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Fitness Coaching API
// @version 1.0
// @description API connecting personal trainers and students: links, suggestions, evaluations, plans, messaging and feed.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting fitcoach server", zap.String("address", cfg.Server.Address))

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			logger.Error("index creation failed", zap.Error(err))
			return
		}
		logger.Info("index creation process completed")
	}()

	// --- Redis ---
	rdb := realtime.NewRedis(cfg.Redis, logger)
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close redis client", zap.Error(err))
		}
	}()
	presenceStore := realtime.NewRedisPresence(rdb)
	publisher := realtime.NewRedisPublisher(rdb)

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg.S3, logger)
	if err != nil {
		logger.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	suggestionRepo := mongo.NewMongoSuggestionRepository(appDB)
	taskRepo := mongo.NewMongoTaskRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	dietRepo := mongo.NewMongoDietRepository(appDB)
	postRepo := mongo.NewMongoPostRepository(appDB)
	messageRepo := mongo.NewMongoMessageRepository(appDB)
	uploadRepo := mongo.NewMongoUploadRepository(appDB)

	// --- Initialize Services ---
	coaching := cfg.Coaching
	relationshipService := service.NewRelationshipService(userRepo, publisher, coaching.FreeTierStudentLimit, logger)
	sweeper := service.NewSweeper(workoutRepo, coaching.SweepInterval, logger)
	services := api.Services{
		Auth:          service.NewAuthService(userRepo, publisher, cfg.JWT.Secret, cfg.JWT.Expiration, logger),
		Relationships: relationshipService,
		Suggestions:   service.NewSuggestionService(suggestionRepo, userRepo, workoutRepo, dietRepo, publisher, coaching.WorkoutTTL, logger),
		Tasks:         service.NewTaskService(taskRepo, userRepo, publisher, logger),
		Plans:         service.NewPlanService(workoutRepo, dietRepo, userRepo, publisher, coaching.WorkoutTTL, logger),
		Presence:      service.NewPresenceService(presenceStore, userRepo, coaching.PresenceTTL, logger),
		Messages:      service.NewMessageService(messageRepo, userRepo, publisher, logger),
		Feed:          service.NewFeedService(postRepo, userRepo),
		Media:         service.NewMediaService(uploadRepo, fileStorage, logger),
		Admin:         service.NewAdminService(userRepo, suggestionRepo, taskRepo, workoutRepo, relationshipService, logger),
		Sweeper:       sweeper,
	}

	// --- Background workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go sweeper.Run(workerCtx)

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	api.SetupRoutes(router, cfg.JWT.Secret, services, logger)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	stopWorkers()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
