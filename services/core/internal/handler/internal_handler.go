package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/service"
)

type InternalHandler struct {
	profileService service.ProfileServiceInterface
}

func NewInternalHandler(profileService service.ProfileServiceInterface) *InternalHandler {
	return &InternalHandler{profileService: profileService}
}

// CreateProfile is called by the auth gateway the first time it sees an account.
func (h *InternalHandler) CreateProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger.InfoCtx(ctx, "Create profile from auth request")

	var req model.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnCtx(ctx, "Invalid create profile request", "error", err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.profileService.EnsureProfile(ctx, req)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to create profile from auth", "user_id", req.UserID, "error", err.Error())
		return respondError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"id":      req.UserID,
		"created": created,
	})
}
