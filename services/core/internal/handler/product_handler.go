package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/service"
)

type ProductHandler struct {
	productService service.ProductServiceInterface
}

func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GET /api/v1/dashboard/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	products, err := h.productService.ListOwnProducts(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// POST /api/v1/dashboard/products accepts JSON, or a multipart form with an
// optional "image" file.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	var req model.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	image, closeImage, err := formUpload(c, "image")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid image upload")
	}
	defer closeImage()

	p, err := h.productService.CreateProduct(c.UserContext(), caller, req, image)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// DELETE /api/v1/dashboard/products/:productId
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	productID, ok := paramUUID(c, "productId")
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrProductNotFound.Error())
	}

	if err := h.productService.DeleteProduct(c.UserContext(), caller, productID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
