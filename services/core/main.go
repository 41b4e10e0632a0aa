package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/config"
	"github.com/teammachinist/tiendaqr/services/core/internal/cart"
	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/database"
	"github.com/teammachinist/tiendaqr/services/core/internal/handler"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
	"github.com/teammachinist/tiendaqr/services/core/internal/service"
)

type repositories struct {
	profiles repository.ProfileRepositoryInterface
	products repository.ProductRepositoryInterface
	orders   repository.OrderRepositoryInterface
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Init(logger.Options{Service: "core", Env: cfg.App.Env, Level: cfg.App.LogLevel})
	logger.Info("Starting Core service", "port", cfg.App.Port)

	var (
		repos   repositories
		dbCheck handler.Checker
	)
	if cfg.InMemory() {
		logger.Warn("DATABASE_URL not set - using in-memory store")
		mem := repository.NewMemoryStore()
		repos = repositories{profiles: mem, products: mem, orders: mem}
	} else {
		db, err := database.NewDatabase(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		repos = repositories{
			profiles: repository.NewProfileRepository(db.Pool),
			products: repository.NewProductRepository(db.Pool),
			orders:   repository.NewOrderRepository(db.Pool),
		}
		dbCheck = db
	}

	jwtService := internal.NewJWTService(&internal.JWTConfig{
		Key:      cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	var (
		catalogCache service.Cache
		cacheCheck   handler.Checker
		cartStorage  cart.Storage = cart.NewMemoryStorage()
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

		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed - carts may not persist", "error", err.Error())
		}
		catalogCache = redisCache
		cacheCheck = handler.CheckerFunc(redisCache.Ping)
		cartStorage = cart.NewRedisStorage(redisCache.GetClient(), cfg.Store.CartTTL)
		// tokens signed out at the auth gateway stop working here too
		jwtService.WithRevocations(redisCache)
	} else {
		logger.Warn("REDIS_ADDR not set - carts kept in memory, catalog cache disabled")
	}

	fileClient := clients.NewFileClient(cfg.App.FileURL, cfg.App.ServiceToken)

	catalog := service.NewCatalogService(repos.profiles, repos.products, catalogCache, service.CatalogOptions{
		CacheTTL:   cfg.Store.CatalogCacheTTL,
		ActiveOnly: cfg.Store.ActiveOnly,
	})
	cartService := service.NewCartService(repos.products, cfg.Store.ActiveOnly)
	checkoutService := service.NewCheckoutService(catalog, repos.orders, fileClient)
	profileService := service.NewProfileService(repos.profiles, fileClient, catalog)
	productService := service.NewProductService(repos.products, fileClient, catalog)
	orderService := service.NewOrderService(repos.orders, repos.products, fileClient, cfg.Store.ProofURLTTL)

	app := fiber.New(fiber.Config{
		AppName:      "Core Service v1.0",
		BodyLimit:    cfg.App.BodyLimit,
		ReadTimeout:  cfg.App.APITimeout,
		WriteTimeout: cfg.App.APITimeout,
	})
	app.Use(recover.New())
	app.Use(fiberlog.New())
	app.Use(handler.RequestContext())

	handler.Register(app, handler.Handlers{
		Health:     handler.NewHealthHandler(dbCheck, cacheCheck),
		Storefront: handler.NewStorefrontHandler(catalog, cartService, checkoutService, cartStorage),
		Dashboard:  handler.NewDashboardHandler(profileService, orderService),
		Product:    handler.NewProductHandler(productService),
		Order:      handler.NewOrderHandler(orderService),
		Internal:   handler.NewInternalHandler(profileService),
	}, jwtService.FiberMiddleware(), handler.ServiceAuth(cfg.App.ServiceToken))

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			logger.Error("Failed to start server", "error", err.Error())
			log.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Shutdown signal received", "signal", sig.String())

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Error("Server forced to shutdown", "error", err.Error())
	}

	logger.Info("Core service stopped gracefully")
}
