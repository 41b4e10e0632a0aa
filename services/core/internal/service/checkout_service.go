package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/cart"
	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

type CheckoutServiceInterface interface {
	// Prepare returns what the checkout page shows, or ErrEmptyCart when the
	// customer should be sent back to the storefront.
	Prepare(ctx context.Context, storage cart.Storage, merchantID uuid.UUID) (model.CheckoutView, error)
	Submit(ctx context.Context, storage cart.Storage, merchantID uuid.UUID, form model.CheckoutForm, proof *Upload) (model.CheckoutResult, error)
}

type CheckoutService struct {
	catalog    CatalogServiceInterface
	orderRepo  repository.OrderRepositoryInterface
	fileClient clients.FileClientInterface
	now        func() time.Time
}

func NewCheckoutService(
	catalog CatalogServiceInterface,
	orderRepo repository.OrderRepositoryInterface,
	fileClient clients.FileClientInterface,
) CheckoutServiceInterface {
	return &CheckoutService{
		catalog:    catalog,
		orderRepo:  orderRepo,
		fileClient: fileClient,
		now:        time.Now,
	}
}

func (s *CheckoutService) Prepare(ctx context.Context, storage cart.Storage, merchantID uuid.UUID) (model.CheckoutView, error) {
	profile, ok := s.catalog.LoadProfile(ctx, merchantID)
	if !ok {
		return model.CheckoutView{}, ErrStoreNotFound
	}

	store, err := cart.Load(ctx, storage, merchantID.String())
	if err != nil {
		return model.CheckoutView{}, err
	}
	if store.Empty() {
		return model.CheckoutView{}, ErrEmptyCart
	}

	return model.CheckoutView{
		StoreName: profile.DisplayName(),
		YapeQRURL: profile.YapeQRURL,
		PlinQRURL: profile.PlinQRURL,
		Cart:      store.View(),
	}, nil
}

// checkAmounts keeps quantities and the total within what the orders tables store.
func checkAmounts(lines cart.Lines) error {
	for _, l := range lines {
		if l.Quantity > math.MaxInt32 {
			return fieldError("quantity", "quantity is too large")
		}
	}
	if lines.TotalPrice().Round(2).GreaterThan(model.MaxAmount) {
		return fieldError("total", "order total must be at most "+model.MaxAmount.StringFixed(2))
	}
	return nil
}

// ProofName is the object name of a payment proof uploaded at t.
func ProofName(merchantID uuid.UUID, t time.Time, ext string) string {
	return fmt.Sprintf("%s-%d%s", merchantID, t.UnixMilli(), ext)
}

// Submit turns the cart into a pending order. Input is validated before any
// remote call. The proof is uploaded first, then the order and its items are
// written in one transaction, then the cart is cleared. A failure at any step
// leaves the cart as it was.
func (s *CheckoutService) Submit(
	ctx context.Context,
	storage cart.Storage,
	merchantID uuid.UUID,
	form model.CheckoutForm,
	proof *Upload,
) (model.CheckoutResult, error) {
	if err := validate(form); err != nil {
		return model.CheckoutResult{}, err
	}
	if proof == nil || proof.Body == nil || proof.Size == 0 {
		return model.CheckoutResult{}, ErrMissingProof
	}
	if err := proof.checkImage(); err != nil {
		return model.CheckoutResult{}, err
	}

	store, err := cart.Load(ctx, storage, merchantID.String())
	if err != nil {
		return model.CheckoutResult{}, err
	}
	if store.Empty() {
		return model.CheckoutResult{}, ErrEmptyCart
	}
	lines := store.Lines()
	if err := checkAmounts(lines); err != nil {
		return model.CheckoutResult{}, err
	}

	if _, ok := s.catalog.LoadProfile(ctx, merchantID); !ok {
		return model.CheckoutResult{}, ErrStoreNotFound
	}

	now := s.now().UTC()
	uploaded, err := s.fileClient.Upload(ctx, BucketProofs, ProofName(merchantID, now, proof.ext()), proof.ContentType, proof.Body)
	if err != nil {
		return model.CheckoutResult{}, fmt.Errorf("failed to upload payment proof: %w", err)
	}

	order := model.Order{
		ID:               uuid.Must(uuid.NewV7()),
		MerchantID:       merchantID,
		CustomerName:     form.CustomerName,
		CustomerPhone:    form.CustomerPhone,
		CustomerAddress:  form.CustomerAddress,
		TotalAmount:      lines.TotalPrice().Round(2),
		Status:           model.OrderStatusPending,
		PaymentProofPath: uploaded.Path,
		CreatedAt:        now,
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		productID := l.Product.ID
		items = append(items, model.OrderItem{
			ID:          uuid.Must(uuid.NewV7()),
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Product.Price,
		})
	}

	created, err := s.orderRepo.CreateOrder(ctx, order, items)
	if err != nil {
		logger.WarnCtx(ctx, "Payment proof left without an order",
			"merchant_id", merchantID, "bucket", BucketProofs, "path", uploaded.Path, "error", err.Error())
		if errors.Is(err, repository.ErrNotFound) {
			return model.CheckoutResult{}, ErrStoreNotFound
		}
		return model.CheckoutResult{}, fmt.Errorf("failed to create order: %w", err)
	}

	if err := store.Clear(ctx); err != nil {
		logger.ErrorCtx(ctx, "Order created but cart not cleared",
			"order_id", created.ID, "merchant_id", merchantID, "error", err.Error())
	}

	logger.InfoCtx(ctx, "Order created",
		"order_id", created.ID, "merchant_id", merchantID, "items", len(created.Items), "total", created.TotalAmount.StringFixed(2))

	return model.CheckoutResult{
		Order:      created,
		RedirectTo: "/store/" + merchantID.String(),
	}, nil
}
