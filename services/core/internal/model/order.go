package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// NextStatuses lists the statuses reachable from s. Terminal statuses return nil.
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := orderTransitions[s]
	if len(next) == 0 {
		return nil
	}
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

type Order struct {
	ID               uuid.UUID       `json:"id"`
	MerchantID       uuid.UUID       `json:"merchant_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	CustomerAddress  string          `json:"customer_address"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           OrderStatus     `json:"status"`
	PaymentProofPath string          `json:"payment_proof_url"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderItem captures the unit price at order time.
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

// OrderView is what the merchant dashboard renders.
type OrderView struct {
	OrderWithItems
	NextStatuses []OrderStatus `json:"next_statuses"`
}

func NewOrderView(o OrderWithItems) OrderView {
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	next := o.Status.NextStatuses()
	if next == nil {
		next = []OrderStatus{}
	}
	return OrderView{OrderWithItems: o, NextStatuses: next}
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending paid shipped cancelled"`
}

// CheckoutForm is the customer contact form. Address is required.
type CheckoutForm struct {
	CustomerName    string `json:"customer_name" form:"customer_name" validate:"notblank,max=120"`
	CustomerPhone   string `json:"customer_phone" form:"customer_phone" validate:"notblank,max=30"`
	CustomerAddress string `json:"customer_address" form:"customer_address" validate:"notblank,max=255"`
}

type DashboardSummary struct {
	ProductCount  int             `json:"product_count"`
	OrderCount    int             `json:"order_count"`
	PendingOrders int             `json:"pending_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
}
