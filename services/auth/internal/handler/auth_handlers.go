package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/auth/internal/clients"
	"github.com/teammachinist/tiendaqr/services/auth/internal/model"
	"github.com/teammachinist/tiendaqr/services/auth/internal/service"
)

type SessionHandler struct {
	sessionService service.SessionServiceInterface
	jwt            *internal.JWTService
}

func NewSessionHandler(sessionService service.SessionServiceInterface, jwtService *internal.JWTService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, jwt: jwtService}
}

// POST /v1/login/email
func (h *SessionHandler) LoginWithEmail(c *gin.Context) {
	ctx := c.Request.Context()
	logger.InfoCtx(ctx, "Login attempt", "method", "email")

	var req model.EmailLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnCtx(ctx, "Invalid request body", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}

	if err := h.sessionService.SendLoginLink(ctx, req.Email); err != nil {
		logger.WarnCtx(ctx, "Login link failed", "error", err.Error())
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, model.MagicLinkResponse{
		Message: "check your email for the sign-in link",
		Email:   req.Email,
	})
}

// GET /v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()

	token, err := h.jwt.ExtractTokenFromHeader(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusOK, service.SignedOut())
		return
	}

	session, err := h.sessionService.CurrentSession(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) || errors.Is(err, service.ErrRevoked) {
			logger.InfoCtx(ctx, "Session not valid", "error", err.Error())
			c.JSON(http.StatusOK, service.SignedOut())
			return
		}
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// POST /v1/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	token, err := h.jwt.ExtractTokenFromHeader(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionService.Logout(ctx, token); err != nil {
		logger.WarnCtx(ctx, "Logout failed", "error", err.Error())
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.SignedOut())
}

// handleAuthError centralizes error-to-status mapping.
func (h *SessionHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, clients.ErrIdentityUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity service unavailable"})
	default:
		logger.ErrorCtx(c.Request.Context(), "Auth request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
