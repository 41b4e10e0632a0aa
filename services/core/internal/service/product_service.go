package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

type ProductServiceInterface interface {
	ListOwnProducts(ctx context.Context, callerID uuid.UUID) ([]model.Product, error)
	CreateProduct(ctx context.Context, callerID uuid.UUID, req model.ProductRequest, image *Upload) (model.Product, error)
	DeleteProduct(ctx context.Context, callerID, productID uuid.UUID) error
}

type ProductService struct {
	productRepo repository.ProductRepositoryInterface
	fileClient  clients.FileClientInterface
	catalog     CatalogServiceInterface
	now         func() time.Time
}

func NewProductService(
	productRepo repository.ProductRepositoryInterface,
	fileClient clients.FileClientInterface,
	catalog CatalogServiceInterface,
) ProductServiceInterface {
	return &ProductService{
		productRepo: productRepo,
		fileClient:  fileClient,
		catalog:     catalog,
		now:         time.Now,
	}
}

func (s *ProductService) ListOwnProducts(ctx context.Context, callerID uuid.UUID) ([]model.Product, error) {
	products, err := s.productRepo.ListProducts(ctx, model.ProductListParams{OwnerID: callerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, fieldError("price", "price must be a non-negative number")
	}
	price = price.Round(2)
	if price.GreaterThan(model.MaxAmount) {
		return decimal.Decimal{}, fieldError("price", "price must be at most "+model.MaxAmount.StringFixed(2))
	}
	return price, nil
}

// CreateProduct uploads the optional image first and then inserts the row.
func (s *ProductService) CreateProduct(ctx context.Context, callerID uuid.UUID, req model.ProductRequest, image *Upload) (model.Product, error) {
	if err := validate(req); err != nil {
		return model.Product{}, err
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return model.Product{}, err
	}
	if image != nil {
		if err := image.checkImage(); err != nil {
			return model.Product{}, err
		}
	}

	now := s.now().UTC()
	var imageURL string
	if image != nil {
		imageURL, err = uploadPublicImage(ctx, s.fileClient, BucketProducts, imageName(BucketProducts, callerID, image, now), image)
		if err != nil {
			return model.Product{}, err
		}
	}

	p, err := s.productRepo.CreateProduct(ctx, model.Product{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      callerID,
		Name:        req.Name,
		Price:       price,
		Description: req.Description,
		ImageURL:    imageURL,
		Active:      true,
		CreatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Product{}, ErrProfileNotFound
		}
		return model.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.catalog.Invalidate(ctx, callerID)
	logger.InfoCtx(ctx, "Product created", "product_id", p.ID, "user_id", callerID)
	return p, nil
}

// objectName is the last path segment of a stored image URL.
func objectName(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil || u.Path == "" {
		return path.Base(imageURL)
	}
	return path.Base(u.Path)
}

// DeleteProduct removes the stored image on a best-effort basis and then the
// row. Image removal failures are logged and do not stop the delete.
func (s *ProductService) DeleteProduct(ctx context.Context, callerID, productID uuid.UUID) error {
	p, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if p.UserID != callerID {
		logger.WarnCtx(ctx, "Product access denied", "product_id", productID, "caller_id", callerID)
		return ErrForbidden
	}

	if p.ImageURL != "" {
		name := objectName(p.ImageURL)
		if err := s.fileClient.Remove(ctx, BucketProducts, name); err != nil {
			logger.WarnCtx(ctx, "Failed to remove product image", "product_id", productID, "object", name, "error", err.Error())
		}
	}

	if err := s.productRepo.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.catalog.Invalidate(ctx, callerID)
	return nil
}
