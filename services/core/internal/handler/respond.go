package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/service"
)

const requestIDHeader = "X-Request-ID"

// RequestContext puts a request id on the user context, reusing the
// upstream X-Request-ID when present.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := logger.WithGivenRequestID(c.UserContext(), c.Get(requestIDHeader))
		c.SetUserContext(ctx)
		if id, ok := logger.RequestID(ctx); ok {
			c.Set(requestIDHeader, id)
		}
		return c.Next()
	}
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondError maps service errors to HTTP statuses. The body always names
// the underlying error text.
func respondError(c *fiber.Ctx, err error) error {
	ctx := c.UserContext()

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  ve.Error(),
			"errors": ve.Fields,
		})
	case errors.Is(err, service.ErrMissingProof),
		errors.Is(err, service.ErrNotImage),
		errors.Is(err, service.ErrInvalidBucket):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStoreNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrNoProof):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrEmptyCart):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, clients.ErrUpstream):
		logger.ErrorCtx(ctx, "Upstream failure", "path", c.Path(), "error", err.Error())
		return errorJSON(c, fiber.StatusBadGateway, err.Error())
	default:
		logger.ErrorCtx(ctx, "Request failed", "path", c.Path(), "error", err.Error())
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
}

// callerID reads the authenticated account id set by the JWT middleware.
func callerID(c *fiber.Ctx) (uuid.UUID, bool) {
	raw, ok := internal.GetUserIDFromFiber(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func unauthorized(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusUnauthorized, "unauthorized: user not authenticated")
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// formUpload opens an optional multipart file. A missing field returns nil.
func formUpload(c *fiber.Ctx, field string) (*service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	up := &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	return up, func() { _ = f.Close() }, nil
}
