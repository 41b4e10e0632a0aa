package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/api"
	"github.com/teammachinist/tiendaqr/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestContext carries the caller's X-Request-ID into the log context.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithGivenRequestID(r.Context(), r.Header.Get(requestIDHeader))
		if id, ok := logger.RequestID(ctx); ok {
			w.Header().Set(requestIDHeader, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ServiceAuth admits only callers presenting the shared service token.
func ServiceAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !internal.ValidServiceToken(token, r.Header.Get(internal.ServiceTokenHeader)) {
				logger.WarnCtx(r.Context(), "Rejected file request without service token", "path", r.URL.Path)
				api.WriteError(w, r, http.StatusUnauthorized, "service token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func NewRouter(files *FileHandler, health *HealthHandler, serviceToken string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestContext)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", health.HealthCheck)
	r.Get("/readyz", health.ReadinessCheck)

	r.Route("/v1/file", func(r chi.Router) {
		r.Use(ServiceAuth(serviceToken))
		r.Post("/{bucket}", files.UploadFile)
		r.Get("/{fileId}", files.GetFile)
		r.Delete("/{bucket}/{name}", files.DeleteFile)
		r.Get("/{bucket}/{name}/signed", files.SignedURL)
	})

	return r
}
