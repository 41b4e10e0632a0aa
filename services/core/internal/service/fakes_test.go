package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

type uploadCall struct {
	Bucket, Name, ContentType, Body string
}

type fakeFiles struct {
	mu        sync.Mutex
	uploads   []uploadCall
	removed   []string
	signed    []string
	uploadErr error
	removeErr error
	signErr   error
}

func (f *fakeFiles) Upload(_ context.Context, bucket, name, contentType string, body io.Reader) (*clients.FileMetadataResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	b, _ := io.ReadAll(body)
	f.uploads = append(f.uploads, uploadCall{bucket, name, contentType, string(b)})

	resp := &clients.FileMetadataResponse{ID: uuid.New(), Bucket: bucket, Path: name, ContentType: contentType}
	if bucket != BucketProofs {
		resp.FileURI = "http://files.local/" + bucket + "/" + name
	}
	return resp, nil
}

func (f *fakeFiles) Remove(_ context.Context, bucket, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, bucket+"/"+name)
	return f.removeErr
}

func (f *fakeFiles) SignedURL(_ context.Context, bucket, name string, ttl time.Duration) (*clients.SignedURLResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.signed = append(f.signed, bucket+"/"+name+"@"+ttl.String())
	return &clients.SignedURLResponse{URL: "http://files.local/signed/" + name, ExpiresAt: time.Now().Add(ttl)}, nil
}

// memCache is an in-process stand-in for internal.CacheService.
type memCache struct {
	mu      sync.Mutex
	items   map[string]any
	deleted []string
}

func newMemCache() *memCache { return &memCache{items: map[string]any{}} }

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return internal.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *model.Profile:
		*d = v.(model.Profile)
	case *[]model.Product:
		*d = v.([]model.Product)
	default:
		return errors.New("unsupported type")
	}
	return nil
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type fixture struct {
	store    *repository.MemoryStore
	files    *fakeFiles
	catalog  CatalogServiceInterface
	cart     CartServiceInterface
	checkout *CheckoutService
	orders   OrderServiceInterface
	profiles ProfileServiceInterface
	products ProductServiceInterface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	files := &fakeFiles{}
	catalog := NewCatalogService(store, store, nil, CatalogOptions{})
	return &fixture{
		store:    store,
		files:    files,
		catalog:  catalog,
		cart:     NewCartService(store, false),
		checkout: NewCheckoutService(catalog, store, files).(*CheckoutService),
		orders:   NewOrderService(store, store, files, time.Hour),
		profiles: NewProfileService(store, files, catalog),
		products: NewProductService(store, files, catalog),
	}
}

func (f *fixture) merchant(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := f.store.CreateProfile(context.Background(), id)
	require.NoError(t, err)
	return id
}

func (f *fixture) product(t *testing.T, owner uuid.UUID, name, price string) model.Product {
	t.Helper()
	p, err := f.store.CreateProduct(context.Background(), model.Product{
		ID: uuid.New(), UserID: owner, Name: name, Price: decimal.RequireFromString(price),
		Active: true, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return p
}

func pngUpload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}
