package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/teammachinist/tiendaqr/internal/api"
	"github.com/teammachinist/tiendaqr/internal/logger"
)

// Checker is a readiness probe: the database or the object store.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	db      Checker
	objects Checker
}

// NewHealthHandler takes nil for the database in memory mode.
func NewHealthHandler(db Checker, objects Checker) *HealthHandler {
	return &HealthHandler{
		db:      db,
		objects: objects,
	}
}

// /healthz - Always OK (liveness)
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "files",
	}
	api.WriteSuccess(w, r, response)
}

// /readyz - both the database and the object store are critical
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			logger.WarnCtx(ctx, "Readiness check failed - database unavailable", "error", err.Error())
			api.WriteError(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	if h.objects != nil {
		if err := h.objects.HealthCheck(ctx); err != nil {
			logger.WarnCtx(ctx, "Readiness check failed - object storage unavailable", "error", err.Error())
			api.WriteError(w, r, http.StatusServiceUnavailable, "object storage unavailable")
			return
		}
	}

	api.WriteSuccess(w, r, map[string]string{"status": "ready"})
}
