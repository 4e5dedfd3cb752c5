package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"direct_message_service/internal/message/app"
	"direct_message_service/internal/message/repository"
	"direct_message_service/internal/message/router"
	"direct_message_service/pkg/config"
	"direct_message_service/pkg/database"
	"direct_message_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MessageService, config.EnvConfig.MessageServiceLogPath)
	cfg := config.LoadConfig[config.Message](config.EnvConfig.MessageService, config.EnvConfig.MessageServiceYAMLPath)

	ctx := context.Background()

	// Mongo holds the durable message records.
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    mongoURI,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", mongoURI)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	if err := repository.EnsureIndexes(ctx, mongo.Database); err != nil {
		logger.Log.Warn("failed to ensure message indexes", zap.Error(err))
	}

	// Postgres serves user display profiles.
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.Profile.User, cfg.Profile.Password, cfg.Profile.Host, cfg.Profile.Port, cfg.Profile.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.Profile.RetryCount,
		RetryInterval: time.Duration(cfg.Profile.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to profile database after retries", zap.Error(err))
	}
	defer pgPool.Close()

	// Redis bridges pushes between nodes.
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	profileRepo := repository.NewProfileRepository(pgPool)
	pubsub := repository.NewRedisPubSub(redisClient, uuid.New().String())

	registry := app.NewConnectionRegistry()
	pusher := app.NewPusher(registry, pubsub)
	unread := app.NewUnreadTracker(msgRepo)
	deliveryUC := app.NewDeliveryUseCase(msgRepo, profileRepo, pusher, unread)
	statusUC := app.NewStatusUseCase(msgRepo, pusher, unread)
	presenceUC := app.NewPresenceUseCase(pusher)
	historyUC := app.NewHistoryUseCase(msgRepo, profileRepo, statusUC, unread)

	// Route pushes published by other nodes to local handles.
	pubsub.SubscribeAll(ctx, pusher.PushLocal)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MessageServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		app.NewMessageWebsocketHandler(registry, deliveryUC, statusUC, presenceUC, unread),
		app.NewHistoryHandler(historyUC, statusUC),
	)

	port := ":" + cfg.Port
	log.Printf("Message Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
