package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/service"
)

// DashboardHandler serves the merchant's own profile and images.
type DashboardHandler struct {
	profileService service.ProfileServiceInterface
	orderService   service.OrderServiceInterface
}

func NewDashboardHandler(profileService service.ProfileServiceInterface, orderService service.OrderServiceInterface) *DashboardHandler {
	return &DashboardHandler{profileService: profileService, orderService: orderService}
}

// GET /api/v1/dashboard/profile
func (h *DashboardHandler) GetProfile(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.profileService.GetOwnProfile(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// PUT /api/v1/dashboard/profile
func (h *DashboardHandler) SaveProfile(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	var req model.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	p, err := h.profileService.SaveProfile(c.UserContext(), caller, req)
	if err != nil {
		return respondError(c, err)
	}
	logger.InfoCtx(c.UserContext(), "Profile saved", "user_id", caller)
	return c.JSON(p)
}

// POST /api/v1/dashboard/images?bucket=avatars|productos
func (h *DashboardHandler) UploadImage(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	bucket := c.Query("bucket", service.BucketAvatars)
	file, closeFile, err := formUpload(c, "file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid file upload")
	}
	defer closeFile()

	url, err := h.profileService.UploadImage(c.UserContext(), caller, bucket, file)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(model.ImageUploadResponse{Bucket: bucket, URL: url})
}

// GET /api/v1/dashboard/summary
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	s, err := h.orderService.Summary(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}
