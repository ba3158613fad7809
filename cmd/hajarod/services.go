package main

import (
	"context"
	"log/slog"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/email"
	"github.com/banseok/hajaro/internal/notify"
	"github.com/banseok/hajaro/internal/push"
	"github.com/banseok/hajaro/internal/queue"
	"github.com/banseok/hajaro/internal/session"
	"github.com/banseok/hajaro/internal/storage"
	"github.com/banseok/hajaro/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Services holds all application services.
type Services struct {
	DefectService       hajaro.DefectService
	UserService         hajaro.UserService
	ApartmentService    hajaro.ApartmentService
	ContractorService   hajaro.ContractorService
	PartnerService      hajaro.PartnerService
	AssociationService  hajaro.AssociationService
	NotificationService hajaro.NotificationService
	DeviceTokenService  hajaro.DeviceTokenService
	SessionService      hajaro.SessionService

	SessionCache *session.Cache
	FileStorage  storage.FileStorage
	EmailService email.EmailService
	PushSender   hajaro.PushSender
	Queue        queue.Queue
	Notifier     *notify.Notifier
}

// initServices initializes all application services.
func initServices(ctx context.Context, pool *pgxpool.Pool, cfg *Config, logger *slog.Logger) (*Services, error) {
	db := postgres.NewDB(pool)
	logger.Info("database services initialized")

	fileStorage, err := initFileStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("file storage initialized", slog.String("provider", cfg.StorageProvider))

	emailService := initEmailService(cfg, logger)
	logger.Info("email service initialized", slog.String("provider", cfg.EmailProvider))

	pushSender := initPushSender(cfg, logger)
	logger.Info("push sender initialized", slog.String("provider", cfg.PushProvider))

	jobQueue := queue.NewPostgresQueue(pool, logger, queue.Config{
		WorkerCount:      cfg.QueueWorkerCount,
		PollInterval:     cfg.QueuePollInterval,
		JobTimeout:       cfg.QueueJobTimeout,
		ShutdownTimeout:  cfg.QueueShutdownTimeout,
		CleanupInterval:  cfg.QueueCleanupInterval,
		CleanupRetention: cfg.QueueCleanupRetention,
	})
	logger.Info("queue service initialized")

	notifier := notify.NewNotifier(
		db.DefectService,
		db.UserService,
		db.NotificationService,
		db.DeviceTokenService,
		pushSender,
		logger,
	)

	return &Services{
		DefectService:       db.DefectService,
		UserService:         db.UserService,
		ApartmentService:    db.ApartmentService,
		ContractorService:   db.ContractorService,
		PartnerService:      db.PartnerService,
		AssociationService:  db.AssociationService,
		NotificationService: db.NotificationService,
		DeviceTokenService:  db.DeviceTokenService,
		SessionService:      db.SessionService,
		SessionCache:        session.NewCache(db.SessionService, db.UserService),
		FileStorage:         fileStorage,
		EmailService:        emailService,
		PushSender:          pushSender,
		Queue:               jobQueue,
		Notifier:            notifier,
	}, nil
}

// initFileStorage creates the appropriate file storage implementation.
func initFileStorage(ctx context.Context, cfg *Config, logger *slog.Logger) (storage.FileStorage, error) {
	logger.Debug("storage service configuration",
		slog.String("provider", cfg.StorageProvider),
		slog.String("local_path", cfg.StorageLocalPath),
		slog.String("s3_bucket", cfg.StorageS3Bucket),
		slog.String("s3_region", cfg.StorageS3Region))

	return storage.NewFileStorage(ctx, logger, storage.Config{
		Provider:  cfg.StorageProvider,
		LocalPath: cfg.StorageLocalPath,
		LocalURL:  cfg.StorageLocalURL,
		S3Bucket:  cfg.StorageS3Bucket,
		S3Region:  cfg.StorageS3Region,
		S3BaseURL: cfg.StorageS3BaseURL,
	})
}

// initEmailService creates the appropriate email service implementation.
func initEmailService(cfg *Config, logger *slog.Logger) email.EmailService {
	logger.Debug("email service configuration",
		slog.String("provider", cfg.EmailProvider),
		slog.String("from_address", cfg.EmailFromAddress),
		slog.String("from_name", cfg.EmailFromName))

	return email.NewEmailService(logger, email.EmailConfig{
		Provider:        cfg.EmailProvider,
		PostmarkToken:   cfg.EmailPostmarkToken,
		PostmarkAccount: cfg.EmailPostmarkAccount,
		FromAddress:     cfg.EmailFromAddress,
		FromName:        cfg.EmailFromName,
		LoginURL:        cfg.EmailLoginURL,
	})
}

// initPushSender creates the appropriate push sender implementation.
func initPushSender(cfg *Config, logger *slog.Logger) hajaro.PushSender {
	logger.Debug("push sender configuration", slog.String("provider", cfg.PushProvider))

	return push.NewSender(logger, push.Config{
		Provider:  cfg.PushProvider,
		ServerKey: cfg.PushServerKey,
		Timeout:   cfg.PushTimeout,
	})
}
