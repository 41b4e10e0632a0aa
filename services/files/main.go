package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/files/config"
	"github.com/teammachinist/tiendaqr/services/files/internal/database"
	"github.com/teammachinist/tiendaqr/services/files/internal/handler"
	"github.com/teammachinist/tiendaqr/services/files/internal/repository"
	"github.com/teammachinist/tiendaqr/services/files/internal/service"
	"github.com/teammachinist/tiendaqr/services/files/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.Options{Service: "files", Env: cfg.Env, Level: cfg.LogLevel})
	logger.Info("Starting Files service")

	var (
		repo    repository.FileRepositoryInterface
		dbCheck handler.Checker
	)
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set - file records kept in memory")
		repo = repository.NewMemoryFileRepository()
	} else {
		db, err := database.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo = repository.NewFileRepository(db.Pool)
		dbCheck = db
	}

	var objects storage.ObjectStorage
	if cfg.MinIOEndpoint == "" {
		logger.Warn("MINIO_ENDPOINT not set - objects kept in memory")
		objects = storage.NewMemoryStorage("http://localhost:" + cfg.Port + "/objects")
	} else {
		minioStorage, err := storage.NewMinIOStorage(storage.MinIOConfig{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			UseSSL:        cfg.MinIOUseSSL,
			PublicBaseURL: cfg.PublicBaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to create object storage: %v", err)
		}
		if err := minioStorage.EnsureBuckets(ctx, service.DefaultBuckets); err != nil {
			log.Fatalf("Failed to prepare buckets: %v", err)
		}
		objects = minioStorage
	}

	fileService := service.NewFileService(repo, objects, service.DefaultBuckets, cfg.MaxUploadBytes)
	router := handler.NewRouter(
		handler.NewFileHandler(fileService, cfg.MaxUploadBytes),
		handler.NewHealthHandler(dbCheck, handler.CheckerFunc(objects.Ping)),
		cfg.ServiceToken,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Files service starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err.Error())
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err.Error())
	}

	logger.Info("Files service stopped gracefully")
}
