package app

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/repository"
	"postboard/internal/service"
	"postboard/internal/storage"
)

// App holds everything the entrypoints share. DB and Storage are nil when the
// corresponding backend is not configured.
type App struct {
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	Storage  storage.Storage
	Logger   *slog.Logger
}

func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func New(cfg *config.Config, logger *slog.Logger) *App {
	a := &App{Logger: logger}

	// connection DB
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		a.Repo = repository.NewMemoryRepository()
	} else {
		db, err := database.ConnectDB(cfg)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		a.DB = db
		a.Repo = repository.NewRepository(db.DB)
	}

	// connection MinIO
	var avatars service.AvatarResolver
	if cfg.MinIO.Enabled() {
		minioClient, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize MinIO: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := minioClient.EnsureBucket(ctx); err != nil {
			logger.Warn("avatar bucket unavailable", "bucket", cfg.MinIO.BucketName, "error", err)
		}
		cancel()

		a.Storage = minioClient
		avatars = minioClient
	}

	tokens, err := service.NewTokenService(service.TokenConfig{
		SecretKey: []byte(cfg.JWTSecretKey),
		TTL:       cfg.AccessTokenDuration,
	})
	if err != nil {
		log.Fatalf("failed to initialize token service: %v", err)
	}

	a.Services = service.NewService(a.Repo, tokens, avatars)
	return a
}

func (a *App) Close() {
	if a.DB == nil {
		return
	}
	if err := a.DB.CloseDB(); err != nil {
		a.Logger.Error("failed to close database", "error", err)
	}
}
