package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/services/core/internal/cart"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

func TestLoadStorefront(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	merchant := f.merchant(t)
	f.product(t, merchant, "A", "1")

	sf, err := f.catalog.LoadStorefront(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, merchant, sf.Profile.ID)
	assert.Len(t, sf.Products, 1)

	_, err = f.catalog.LoadStorefront(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestLoadProductsEmptyIsNotNil(t *testing.T) {
	f := newFixture(t)
	products := f.catalog.LoadProducts(context.Background(), f.merchant(t))
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestActiveOnlyFiltering(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	merchant := uuid.New()
	_, err := store.CreateProfile(ctx, merchant)
	require.NoError(t, err)

	hidden, err := store.CreateProduct(ctx, model.Product{
		ID: uuid.New(), UserID: merchant, Name: "hidden", Price: decimal.NewFromInt(1), CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	all := NewCatalogService(store, store, nil, CatalogOptions{})
	assert.Len(t, all.LoadProducts(ctx, merchant), 1)

	onlyActive := NewCatalogService(store, store, nil, CatalogOptions{ActiveOnly: true})
	assert.Empty(t, onlyActive.LoadProducts(ctx, merchant))

	_, err = NewCartService(store, true).AddItem(ctx, cart.NewMemoryStorage(), merchant, hidden.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogCacheServesRepeatReads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	merchant := f.merchant(t)
	cache := newMemCache()
	catalog := NewCatalogService(f.store, f.store, cache, CatalogOptions{CacheTTL: time.Minute})

	assert.Empty(t, catalog.LoadProducts(ctx, merchant))
	f.product(t, merchant, "A", "1")

	// still served from cache
	assert.Empty(t, catalog.LoadProducts(ctx, merchant))

	catalog.Invalidate(ctx, merchant)
	assert.Len(t, catalog.LoadProducts(ctx, merchant), 1)
}

func TestCartRejectsForeignProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	merchant := f.merchant(t)
	other := f.merchant(t)
	foreign := f.product(t, other, "X", "1")

	_, err := f.cart.AddItem(ctx, cart.NewMemoryStorage(), merchant, foreign.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.cart.AddItem(ctx, cart.NewMemoryStorage(), merchant, uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartServiceOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	merchant := f.merchant(t)
	a := f.product(t, merchant, "A", "10.00")
	storage := cart.NewMemoryStorage()

	_, err := f.cart.AddItem(ctx, storage, merchant, a.ID)
	require.NoError(t, err)

	view, err := f.cart.AdjustQuantity(ctx, storage, merchant, a.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalItems)

	view, err = f.cart.AdjustQuantity(ctx, storage, merchant, a.ID, -9)
	require.NoError(t, err)
	assert.Equal(t, 0, view.TotalItems)

	_, err = f.cart.AddItem(ctx, storage, merchant, a.ID)
	require.NoError(t, err)
	view, err = f.cart.RemoveItem(ctx, storage, merchant, a.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = f.cart.AddItem(ctx, storage, merchant, a.ID)
	require.NoError(t, err)
	require.NoError(t, f.cart.Clear(ctx, storage, merchant))
	view, err = f.cart.View(ctx, storage, merchant)
	require.NoError(t, err)
	assert.Equal(t, 0, view.TotalItems)
}
