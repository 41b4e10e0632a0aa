package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/services/core/internal/cart"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

// CartServiceInterface drives a cart.Store for one storefront. The storage
// passed in is already scoped to the customer's session.
type CartServiceInterface interface {
	View(ctx context.Context, storage cart.Storage, merchantID uuid.UUID) (model.CartView, error)
	AddItem(ctx context.Context, storage cart.Storage, merchantID, productID uuid.UUID) (model.CartView, error)
	AdjustQuantity(ctx context.Context, storage cart.Storage, merchantID, productID uuid.UUID, delta int) (model.CartView, error)
	RemoveItem(ctx context.Context, storage cart.Storage, merchantID, productID uuid.UUID) (model.CartView, error)
	Clear(ctx context.Context, storage cart.Storage, merchantID uuid.UUID) error
}

type CartService struct {
	productRepo repository.ProductRepositoryInterface
	activeOnly  bool
}

func NewCartService(productRepo repository.ProductRepositoryInterface, activeOnly bool) CartServiceInterface {
	return &CartService{productRepo: productRepo, activeOnly: activeOnly}
}

func (s *CartService) View(ctx context.Context, storage cart.Storage, merchantID uuid.UUID) (model.CartView, error) {
	store, err := cart.Load(ctx, storage, merchantID.String())
	if err != nil {
		return model.CartView{}, err
	}
	return store.View(), nil
}

// AddItem snapshots the product as the storefront currently shows it.
func (s *CartService) AddItem(ctx context.Context, storage cart.Storage, merchantID, productID uuid.UUID) (model.CartView, error) {
	p, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.CartView{}, ErrProductNotFound
		}
		return model.CartView{}, err
	}
	if p.UserID != merchantID || (s.activeOnly && !p.Active) {
		return model.CartView{}, ErrProductNotFound
	}

	store, err := cart.Load(ctx, storage, merchantID.String())
	if err != nil {
		return model.CartView{}, err
	}
	if err := store.AddItem(ctx, p); err != nil {
		return model.CartView{}, err
	}
	return store.View(), nil
}

func (s *CartService) AdjustQuantity(ctx context.Context, storage cart.Storage, merchantID, productID uuid.UUID, delta int) (model.CartView, error) {
	store, err := cart.Load(ctx, storage, merchantID.String())
	if err != nil {
		return model.CartView{}, err
	}
	if err := store.SetQuantity(ctx, productID, delta); err != nil {
		return model.CartView{}, err
	}
	return store.View(), nil
}

func (s *CartService) RemoveItem(ctx context.Context, storage cart.Storage, merchantID, productID uuid.UUID) (model.CartView, error) {
	store, err := cart.Load(ctx, storage, merchantID.String())
	if err != nil {
		return model.CartView{}, err
	}
	if err := store.RemoveItem(ctx, productID); err != nil {
		return model.CartView{}, err
	}
	return store.View(), nil
}

func (s *CartService) Clear(ctx context.Context, storage cart.Storage, merchantID uuid.UUID) error {
	store, err := cart.Load(ctx, storage, merchantID.String())
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}
