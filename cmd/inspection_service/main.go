package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"cov_inspection_service/internal/inspection/api/handlers"
	"cov_inspection_service/internal/inspection/api/router"
	"cov_inspection_service/internal/inspection/app"
	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/internal/inspection/repository"
	"cov_inspection_service/internal/inspection/storage"
	"cov_inspection_service/pkg/config"
	"cov_inspection_service/pkg/database"
	"cov_inspection_service/pkg/logger"
	"cov_inspection_service/pkg/roster"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.InspectionService, config.EnvConfig.InspectionServiceLogPath)

	cfg := config.LoadConfig[config.Inspection](config.EnvConfig.InspectionService, config.EnvConfig.InspectionServiceYAMLPath)

	// 1. MongoDB
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d",
		cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	if cfg.Mongo.User == "" {
		mongoURI = fmt.Sprintf("mongodb://%s:%d", cfg.Mongo.Host, cfg.Mongo.Port)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	mongoDB, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    mongoURI,
		RetryCount:    cfg.Mongo.RetryCount,
		RetryInterval: time.Duration(cfg.Mongo.RetryInterval) * time.Second,
	}, cfg.Mongo.Database)
	cancel()
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to MongoDB after retries",
			zap.String("address", fmt.Sprintf("%s:%d", cfg.Mongo.Host, cfg.Mongo.Port)),
			zap.Error(err),
		)
	}
	defer mongoDB.Close(context.Background())

	inspectionRepo := repository.NewInspectionRepo(mongoDB.Database)
	eventRepo := repository.NewEventRepo(mongoDB.Database)
	activityRepo := repository.NewActivityRepo(mongoDB.Database)

	// 2. MinIO, only required when the mode places remotely
	var remote storage.Remote
	if cfg.Storage.Mode == app.ModeRemote || cfg.Storage.Mode == app.ModeBoth {
		minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
			Endpoint:   fmt.Sprintf("%s:%d", cfg.MinIO.Host, cfg.MinIO.Port),
			User:       cfg.MinIO.User,
			Password:   cfg.MinIO.Password,
			BucketName: cfg.MinIO.BucketName,
			UseSSL:     cfg.MinIO.UseSSL,

			RetryCount:    cfg.MinIO.RetryCount,
			RetryInterval: time.Duration(cfg.MinIO.RetryInterval) * time.Second,
		})
		if err != nil {
			logger.Log.Fatal(
				"Unable to connect to minio after retries",
				zap.String("address", fmt.Sprintf("%s:%d", cfg.MinIO.Host, cfg.MinIO.Port)),
				zap.Error(err),
			)
		}
		remote = storage.NewRemoteVideoStore(minioClient, cfg.Storage.RemoteFolder)
	}

	// 3. Redis session store, degraded when unreachable
	sessions, err := database.NewRedisRepository[domain.Session](cfg.Redis.Addr, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Warn("Redis unavailable, sessions disabled", zap.Error(err))
		sessions = nil
	}

	// 4. Kafka audit publisher, degraded when unreachable
	var auditWriter *kafka.Writer
	if len(cfg.Kafka.Brokers) > 0 {
		auditWriter, err = database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval) * time.Second,
		})
		if err != nil {
			logger.Log.Warn("Kafka unavailable, audit publishing disabled", zap.Error(err))
			auditWriter = nil
		} else {
			defer auditWriter.Close()
		}
	}

	// 5. local store and transcoder
	local, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Log.Fatal("Unable to create upload directory", zap.Error(err))
	}
	transcoder, err := app.NewFFmpegTranscoder(cfg.Storage.FFmpegPath, cfg.Storage.UploadDir, cfg.Storage.ThumbDir)
	if err != nil {
		logger.Log.Fatal("Unable to create thumbnail directory", zap.Error(err))
	}

	// 6. roster and usecases
	memberRoster := roster.New(cfg.Auth.RosterPath)

	videoUseCase := app.NewVideoUseCase(inspectionRepo, local, remote, transcoder,
		cfg.Storage.Mode, cfg.Storage.AllowedExts, cfg.Storage.ThumbDir)

	var publisher app.AuditPublisher
	if auditWriter != nil {
		publisher = auditWriter
	}
	activityRecorder := app.NewActivityRecorder(activityRepo, memberRoster, publisher)

	inspectionUseCase := app.NewInspectionUseCase(inspectionRepo, eventRepo, videoUseCase, activityRecorder)
	eventUseCase := app.NewEventUseCase(eventRepo, inspectionRepo, activityRecorder, memberRoster)
	authUseCase := app.NewAuthUseCase(memberRoster, sessions, app.AuthConfig{
		SuperAdminCAPID:        cfg.Auth.SuperAdminCAPID,
		SuperAdminPasswordHash: cfg.Auth.SuperAdminPasswordHash,
		AdminDutyPositions:     cfg.Auth.AdminDutyPositions,
		ServiceName:            config.EnvConfig.InspectionService,
		SessionTTL:             cfg.SessionTTL,
	})

	// 7. HTTP surface
	inspectionHandler := handlers.NewInspectionHandler(inspectionUseCase, videoUseCase, memberRoster)
	videoHandler := handlers.NewVideoHandler(videoUseCase)
	eventHandler := handlers.NewEventHandler(eventUseCase)
	adminHandler := handlers.NewAdminHandler(inspectionUseCase, authUseCase, activityRepo)
	authHandler := handlers.NewAuthHandler(authUseCase)

	r := fiber.New(fiber.Config{
		BodyLimit: 512 * 1024 * 1024,
	})

	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.InspectionServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, inspectionHandler, videoHandler, eventHandler, adminHandler, authHandler)

	logger.Log.Info(fmt.Sprintf("Inspection service listening on : %s", cfg.Port))
	if err := r.Listen(cfg.IP + ":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}
