package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

// Cache is the part of internal.CacheService the services use.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	profileCacheKey  = "storefront:profile:"
	productsCacheKey = "storefront:products:"
)

// CatalogServiceInterface is the read-only storefront side. Failures are
// logged and reported as absence so pages degrade to not-found or empty.
type CatalogServiceInterface interface {
	LoadProfile(ctx context.Context, merchantID uuid.UUID) (model.Profile, bool)
	LoadProducts(ctx context.Context, merchantID uuid.UUID) []model.Product
	LoadStorefront(ctx context.Context, merchantID uuid.UUID) (model.Storefront, error)
	// Invalidate drops cached reads of a merchant after a dashboard write.
	Invalidate(ctx context.Context, merchantID uuid.UUID)
}

type CatalogService struct {
	profileRepo repository.ProfileRepositoryInterface
	productRepo repository.ProductRepositoryInterface
	cache       Cache
	cacheTTL    time.Duration
	activeOnly  bool
}

type CatalogOptions struct {
	CacheTTL   time.Duration
	ActiveOnly bool
}

// NewCatalogService builds the catalog reader. cache may be nil.
func NewCatalogService(
	profileRepo repository.ProfileRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	cache Cache,
	opts CatalogOptions,
) CatalogServiceInterface {
	return &CatalogService{
		profileRepo: profileRepo,
		productRepo: productRepo,
		cache:       cache,
		cacheTTL:    opts.CacheTTL,
		activeOnly:  opts.ActiveOnly,
	}
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err != nil && !errors.Is(err, internal.ErrCacheMiss) {
		logger.WarnCtx(ctx, "Catalog cache read failed", "key", key, "error", err.Error())
	}
	return err == nil
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
		logger.WarnCtx(ctx, "Catalog cache write failed", "key", key, "error", err.Error())
	}
}

func (s *CatalogService) productsKey(merchantID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%t", productsCacheKey, merchantID, s.activeOnly)
}

func (s *CatalogService) LoadProfile(ctx context.Context, merchantID uuid.UUID) (model.Profile, bool) {
	key := profileCacheKey + merchantID.String()

	var p model.Profile
	if s.cacheGet(ctx, key, &p) {
		return p, true
	}

	p, err := s.profileRepo.GetProfileByID(ctx, merchantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.ErrorCtx(ctx, "Failed to load profile", "merchant_id", merchantID, "error", err.Error())
		}
		return model.Profile{}, false
	}

	p = p.WithDefaults()
	s.cacheSet(ctx, key, p)
	return p, true
}

func (s *CatalogService) LoadProducts(ctx context.Context, merchantID uuid.UUID) []model.Product {
	key := s.productsKey(merchantID)

	var products []model.Product
	if s.cacheGet(ctx, key, &products) && products != nil {
		return products
	}

	products, err := s.productRepo.ListProducts(ctx, model.ProductListParams{
		OwnerID:    merchantID,
		ActiveOnly: s.activeOnly,
	})
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to load products", "merchant_id", merchantID, "error", err.Error())
		return []model.Product{}
	}

	s.cacheSet(ctx, key, products)
	return products
}

// LoadStorefront fetches profile and products concurrently.
func (s *CatalogService) LoadStorefront(ctx context.Context, merchantID uuid.UUID) (model.Storefront, error) {
	var (
		sf    model.Storefront
		found bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sf.Profile, found = s.LoadProfile(gctx, merchantID)
		return nil
	})
	g.Go(func() error {
		sf.Products = s.LoadProducts(gctx, merchantID)
		return nil
	})
	_ = g.Wait()

	if !found {
		return model.Storefront{}, ErrStoreNotFound
	}
	return sf, nil
}

func (s *CatalogService) Invalidate(ctx context.Context, merchantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	keys := []string{
		profileCacheKey + merchantID.String(),
		fmt.Sprintf("%s%s:%t", productsCacheKey, merchantID, true),
		fmt.Sprintf("%s%s:%t", productsCacheKey, merchantID, false),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.WarnCtx(ctx, "Catalog cache invalidation failed", "merchant_id", merchantID, "error", err.Error())
	}
}
