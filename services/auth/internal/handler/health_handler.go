package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teammachinist/tiendaqr/internal/logger"
)

// Pinger is the redis session cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	cache Pinger
}

// NewHealthHandler takes nil when no cache is configured.
func NewHealthHandler(cache Pinger) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// /healthz - Always OK (liveness)
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "auth"})
}

// /readyz - the gateway is stateless; a missing cache only disables revocation
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			logger.WarnCtx(ctx, "Cache unavailable but service still ready", "error", err.Error())
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
