package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

type OrderServiceInterface interface {
	ListOrders(ctx context.Context, callerID uuid.UUID) ([]model.OrderView, error)
	UpdateStatus(ctx context.Context, callerID, orderID uuid.UUID, status model.OrderStatus) (model.OrderView, error)
	RevealProof(ctx context.Context, callerID, orderID uuid.UUID) (*clients.SignedURLResponse, error)
	Summary(ctx context.Context, callerID uuid.UUID) (model.DashboardSummary, error)
}

type OrderService struct {
	orderRepo   repository.OrderRepositoryInterface
	productRepo repository.ProductRepositoryInterface
	fileClient  clients.FileClientInterface
	proofTTL    time.Duration
}

func NewOrderService(
	orderRepo repository.OrderRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	fileClient clients.FileClientInterface,
	proofTTL time.Duration,
) OrderServiceInterface {
	if proofTTL <= 0 {
		proofTTL = time.Hour
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		fileClient:  fileClient,
		proofTTL:    proofTTL,
	}
}

func (s *OrderService) ListOrders(ctx context.Context, callerID uuid.UUID) ([]model.OrderView, error) {
	orders, err := s.orderRepo.ListOrders(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	views := make([]model.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, model.NewOrderView(o))
	}
	return views, nil
}

// ownOrder loads an order and checks it belongs to the caller.
func (s *OrderService) ownOrder(ctx context.Context, callerID, orderID uuid.UUID) (model.OrderWithItems, error) {
	o, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.OrderWithItems{}, ErrOrderNotFound
		}
		return model.OrderWithItems{}, err
	}
	if o.MerchantID != callerID {
		logger.WarnCtx(ctx, "Order access denied", "order_id", orderID, "caller_id", callerID)
		return model.OrderWithItems{}, ErrForbidden
	}
	return o, nil
}

// UpdateStatus moves an order along pending→paid, pending→cancelled or
// paid→shipped. Any other request is ErrInvalidTransition.
func (s *OrderService) UpdateStatus(ctx context.Context, callerID, orderID uuid.UUID, status model.OrderStatus) (model.OrderView, error) {
	if err := validate(model.UpdateOrderStatusRequest{Status: status}); err != nil {
		return model.OrderView{}, err
	}

	o, err := s.ownOrder(ctx, callerID, orderID)
	if err != nil {
		return model.OrderView{}, err
	}

	if !o.Status.CanTransitionTo(status) {
		return model.OrderView{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.OrderView{}, ErrOrderNotFound
		}
		return model.OrderView{}, fmt.Errorf("failed to update order status: %w", err)
	}

	logger.InfoCtx(ctx, "Order status updated", "order_id", orderID, "from", o.Status, "to", status)
	o.Status = status
	return model.NewOrderView(o), nil
}

// RevealProof signs the private proof object on demand.
func (s *OrderService) RevealProof(ctx context.Context, callerID, orderID uuid.UUID) (*clients.SignedURLResponse, error) {
	o, err := s.ownOrder(ctx, callerID, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentProofPath == "" {
		return nil, ErrNoProof
	}

	signed, err := s.fileClient.SignedURL(ctx, BucketProofs, o.PaymentProofPath, s.proofTTL)
	if err != nil {
		if errors.Is(err, clients.ErrFileNotFound) {
			return nil, ErrNoProof
		}
		return nil, fmt.Errorf("failed to sign payment proof: %w", err)
	}
	return signed, nil
}

func (s *OrderService) Summary(ctx context.Context, callerID uuid.UUID) (model.DashboardSummary, error) {
	summary, err := s.orderRepo.OrderStats(ctx, callerID)
	if err != nil {
		return model.DashboardSummary{}, fmt.Errorf("failed to load order stats: %w", err)
	}

	count, err := s.productRepo.CountProducts(ctx, callerID)
	if err != nil {
		return model.DashboardSummary{}, fmt.Errorf("failed to count products: %w", err)
	}
	summary.ProductCount = count
	summary.Revenue = summary.Revenue.Round(2)
	return summary, nil
}
