package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/cart"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/service"
)

const (
	cartSessionCookie = "cart_session"
	cartSessionHeader = "X-Cart-Session"
	cartSessionMaxAge = 30 * 24 * time.Hour
)

// StorefrontHandler serves the unauthenticated storefront: catalog, cart and checkout.
type StorefrontHandler struct {
	catalog     service.CatalogServiceInterface
	cartService service.CartServiceInterface
	checkout    service.CheckoutServiceInterface
	cartStorage cart.Storage
}

func NewStorefrontHandler(
	catalog service.CatalogServiceInterface,
	cartService service.CartServiceInterface,
	checkout service.CheckoutServiceInterface,
	cartStorage cart.Storage,
) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:     catalog,
		cartService: cartService,
		checkout:    checkout,
		cartStorage: cartStorage,
	}
}

func merchantParam(c *fiber.Ctx) (uuid.UUID, bool) {
	return paramUUID(c, "merchantId")
}

// GET /api/v1/store/:merchantId
func (h *StorefrontHandler) GetStorefront(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}

	sf, err := h.catalog.LoadStorefront(c.UserContext(), merchantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sf)
}

// GET /api/v1/store/:merchantId/products
func (h *StorefrontHandler) GetProducts(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return c.JSON([]model.Product{})
	}
	return c.JSON(h.catalog.LoadProducts(c.UserContext(), merchantID))
}

// sessionStorage scopes the cart storage to the caller's cart session,
// issuing a new session id when the request carries none.
func (h *StorefrontHandler) sessionStorage(c *fiber.Ctx) cart.Storage {
	session := c.Get(cartSessionHeader)
	if session == "" {
		session = c.Cookies(cartSessionCookie)
	}
	if _, err := uuid.Parse(session); err != nil {
		session = uuid.Must(uuid.NewV7()).String()
		logger.InfoCtx(c.UserContext(), "New cart session", "session", session)
	}

	c.Cookie(&fiber.Cookie{
		Name:     cartSessionCookie,
		Value:    session,
		Path:     "/",
		Expires:  time.Now().Add(cartSessionMaxAge),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Set(cartSessionHeader, session)

	return cart.NewPrefixed(h.cartStorage, "session:"+session+":")
}

// GET /api/v1/store/:merchantId/cart
func (h *StorefrontHandler) GetCart(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}

	view, err := h.cartService.View(c.UserContext(), h.sessionStorage(c), merchantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
}

// POST /api/v1/store/:merchantId/cart/items
func (h *StorefrontHandler) AddCartItem(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "product_id must be a valid UUID")
	}

	view, err := h.cartService.AddItem(c.UserContext(), h.sessionStorage(c), merchantID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

type adjustCartItemRequest struct {
	Delta int `json:"delta"`
}

// PATCH /api/v1/store/:merchantId/cart/items/:productId
func (h *StorefrontHandler) AdjustCartItem(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}
	productID, ok := paramUUID(c, "productId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid product id")
	}

	var req adjustCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.cartService.AdjustQuantity(c.UserContext(), h.sessionStorage(c), merchantID, productID, req.Delta)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// DELETE /api/v1/store/:merchantId/cart/items/:productId
func (h *StorefrontHandler) RemoveCartItem(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}
	productID, ok := paramUUID(c, "productId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid product id")
	}

	view, err := h.cartService.RemoveItem(c.UserContext(), h.sessionStorage(c), merchantID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// DELETE /api/v1/store/:merchantId/cart
func (h *StorefrontHandler) ClearCart(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}

	if err := h.cartService.Clear(c.UserContext(), h.sessionStorage(c), merchantID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/store/:merchantId/checkout
func (h *StorefrontHandler) GetCheckout(c *fiber.Ctx) error {
	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}

	view, err := h.checkout.Prepare(c.UserContext(), h.sessionStorage(c), merchantID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":       err.Error(),
				"redirect_to": "/store/" + merchantID.String(),
			})
		}
		return respondError(c, err)
	}
	return c.JSON(view)
}

// POST /api/v1/store/:merchantId/checkout
func (h *StorefrontHandler) SubmitCheckout(c *fiber.Ctx) error {
	ctx := c.UserContext()

	merchantID, ok := merchantParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, service.ErrStoreNotFound.Error())
	}

	var form model.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid form body")
	}

	proof, closeProof, err := formUpload(c, "payment_proof")
	if err != nil {
		logger.WarnCtx(ctx, "Unreadable payment proof", "error", err.Error())
		return errorJSON(c, fiber.StatusBadRequest, "invalid payment proof upload")
	}
	defer closeProof()

	res, err := h.checkout.Submit(ctx, h.sessionStorage(c), merchantID, form, proof)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
