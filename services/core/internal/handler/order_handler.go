package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/service"
)

type OrderHandler struct {
	orderService service.OrderServiceInterface
}

func NewOrderHandler(orderService service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GET /api/v1/dashboard/orders
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}

	orders, err := h.orderService.ListOrders(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// PATCH /api/v1/dashboard/orders/:orderId/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, ok := paramUUID(c, "orderId")
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrOrderNotFound.Error())
	}

	var req model.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.orderService.UpdateStatus(c.UserContext(), caller, orderID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GET /api/v1/dashboard/orders/:orderId/proof
func (h *OrderHandler) RevealProof(c *fiber.Ctx) error {
	caller, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	orderID, ok := paramUUID(c, "orderId")
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrOrderNotFound.Error())
	}

	signed, err := h.orderService.RevealProof(c.UserContext(), caller, orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(signed)
}
