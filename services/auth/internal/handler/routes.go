package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teammachinist/tiendaqr/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestContext puts a request id on the request context.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logger.WithGivenRequestID(c.Request.Context(), c.GetHeader(requestIDHeader))
		if id, ok := logger.RequestID(ctx); ok {
			c.Header(requestIDHeader, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func NewRouter(sessions *SessionHandler, health *HealthHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), RequestContext())
	_ = router.SetTrustedProxies(nil)

	router.GET("/healthz", health.HealthCheck)
	router.GET("/readyz", health.ReadinessCheck)

	v1 := router.Group("/v1")
	{
		v1.POST("/login/email", sessions.LoginWithEmail)
		v1.GET("/session", sessions.GetSession)
		v1.POST("/logout", sessions.Logout)
	}

	return router
}
