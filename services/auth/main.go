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

	"github.com/gin-gonic/gin"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/auth/config"
	"github.com/teammachinist/tiendaqr/services/auth/internal/clients"
	"github.com/teammachinist/tiendaqr/services/auth/internal/handler"
	"github.com/teammachinist/tiendaqr/services/auth/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Init(logger.Options{Service: "auth", Env: cfg.App.Env, Level: cfg.App.LogLevel})
	logger.Info("Starting Auth service", "port", cfg.App.Port)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		sessionCache service.Cache
		cachePing    handler.Pinger
	)
	if cfg.CacheEnabled() {
		redisCache := internal.NewCacheServiceWithConfig(internal.CacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisCache.Close(); err != nil {
				logger.Error("Failed to close Redis connection", "error", err.Error())
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed - sessions will not be cached", "error", err.Error())
		}
		cancel()

		sessionCache = redisCache
		cachePing = redisCache
	} else {
		logger.Warn("REDIS_ADDR not set - session caching and revocation disabled")
	}

	jwtService := internal.NewJWTService(&internal.JWTConfig{
		Key:      cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	sessionService := service.NewSessionService(
		jwtService,
		clients.NewIdentityClient(cfg.Identity.URL, cfg.Identity.APIKey),
		clients.NewCoreClient(cfg.App.CoreURL, cfg.App.ServiceToken),
		sessionCache,
		service.SessionOptions{SiteURL: cfg.App.SiteURL, CacheTTL: cfg.Redis.SessionCacheTTL},
	)

	router := handler.NewRouter(
		handler.NewSessionHandler(sessionService, jwtService),
		handler.NewHealthHandler(cachePing),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err.Error())
			log.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err.Error())
	}

	logger.Info("Auth service stopped gracefully")
}
