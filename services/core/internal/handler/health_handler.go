package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teammachinist/tiendaqr/internal/logger"
)

// Checker is anything with a readiness probe: the database or the redis cache.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a plain function, e.g. a redis Ping.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	db    Checker
	cache Checker
}

// NewHealthHandler takes nil for either dependency when it is not configured.
func NewHealthHandler(db Checker, cache Checker) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cache,
	}
}

// /healthz - liveness probe
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "core",
	})
}

// /readyz - database is critical, cache is not
func (h *HealthHandler) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			logger.WarnCtx(ctx, "Readiness check failed - database unavailable", "error", err.Error())
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"error":  "database unavailable",
			})
		}
	}

	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			logger.WarnCtx(ctx, "Cache unavailable but service still ready", "error", err.Error())
		}
	}

	return c.JSON(fiber.Map{"status": "ready"})
}
