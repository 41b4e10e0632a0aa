package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
)

type Handlers struct {
	Health     *HealthHandler
	Storefront *StorefrontHandler
	Dashboard  *DashboardHandler
	Product    *ProductHandler
	Order      *OrderHandler
	Internal   *InternalHandler
}

// ServiceAuth admits only callers presenting the shared service token.
func ServiceAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !internal.ValidServiceToken(token, c.Get(internal.ServiceTokenHeader)) {
			logger.WarnCtx(c.UserContext(), "Rejected internal request without service token", "path", c.Path())
			return errorJSON(c, fiber.StatusUnauthorized, "service token required")
		}
		return c.Next()
	}
}

// Register mounts every core route. auth guards the dashboard group and
// serviceAuth the internal one.
func Register(app *fiber.App, h Handlers, auth, serviceAuth fiber.Handler) {
	app.Get("/healthz", h.Health.HealthCheck)
	app.Get("/readyz", h.Health.ReadinessCheck)

	app.Post("/internal/profiles", serviceAuth, h.Internal.CreateProfile)

	v1 := app.Group("/api/v1")

	store := v1.Group("/store/:merchantId")
	store.Get("/", h.Storefront.GetStorefront)
	store.Get("/products", h.Storefront.GetProducts)
	store.Get("/cart", h.Storefront.GetCart)
	store.Delete("/cart", h.Storefront.ClearCart)
	store.Post("/cart/items", h.Storefront.AddCartItem)
	store.Patch("/cart/items/:productId", h.Storefront.AdjustCartItem)
	store.Delete("/cart/items/:productId", h.Storefront.RemoveCartItem)
	store.Get("/checkout", h.Storefront.GetCheckout)
	store.Post("/checkout", h.Storefront.SubmitCheckout)

	dash := v1.Group("/dashboard", auth)
	dash.Get("/profile", h.Dashboard.GetProfile)
	dash.Put("/profile", h.Dashboard.SaveProfile)
	dash.Post("/images", h.Dashboard.UploadImage)
	dash.Get("/summary", h.Dashboard.Summary)

	dash.Get("/products", h.Product.ListProducts)
	dash.Post("/products", h.Product.CreateProduct)
	dash.Delete("/products/:productId", h.Product.DeleteProduct)

	dash.Get("/orders", h.Order.ListOrders)
	dash.Patch("/orders/:orderId/status", h.Order.UpdateStatus)
	dash.Get("/orders/:orderId/proof", h.Order.RevealProof)
}
