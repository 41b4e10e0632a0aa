package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teammachinist/tiendaqr/services/core/internal/database"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

type OrderRepositoryInterface interface {
	// CreateOrder writes the order and all of its items, or nothing.
	CreateOrder(ctx context.Context, order model.Order, items []model.OrderItem) (model.OrderWithItems, error)
	// ListOrders returns the merchant's orders newest first. Orders without
	// items come back with an empty item list.
	ListOrders(ctx context.Context, merchantID uuid.UUID) ([]model.OrderWithItems, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (model.OrderWithItems, error)
	// UpdateOrderStatus overwrites the status with no transition check.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	OrderStats(ctx context.Context, merchantID uuid.UUID) (model.DashboardSummary, error)
}

type OrderRepository struct {
	db database.TxDB
}

func NewOrderRepository(db database.TxDB) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order model.Order, items []model.OrderItem) (model.OrderWithItems, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.OrderWithItems{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, merchant_id, customer_name, customer_phone, customer_address,
			total_amount, status, payment_proof_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.MerchantID, order.CustomerName, order.CustomerPhone, order.CustomerAddress,
		order.TotalAmount, string(order.Status), order.PaymentProofPath, order.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.OrderWithItems{}, ErrNotFound
		}
		return model.OrderWithItems{}, fmt.Errorf("insert order: %w", err)
	}

	for i, it := range items {
		it.OrderID = order.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.Price,
		)
		if err != nil {
			return model.OrderWithItems{}, fmt.Errorf("insert order item %d: %w", i, err)
		}
		items[i] = it
	}

	if err := tx.Commit(ctx); err != nil {
		return model.OrderWithItems{}, err
	}

	return model.OrderWithItems{Order: order, Items: items}, nil
}

const orderWithItemsQuery = `
	SELECT o.id, o.merchant_id, o.customer_name, o.customer_phone, o.customer_address,
		o.total_amount, o.status, o.payment_proof_url, o.created_at,
		oi.id, oi.product_id, COALESCE(p.name, oi.product_name), oi.quantity, oi.price
	FROM orders o
	LEFT JOIN order_items oi ON oi.order_id = o.id
	LEFT JOIN products p ON p.id = oi.product_id`

func (r *OrderRepository) queryOrders(ctx context.Context, where string, arg any) ([]model.OrderWithItems, error) {
	rows, err := r.db.Query(ctx, orderWithItemsQuery+` WHERE `+where+`
		ORDER BY o.created_at DESC, o.id, oi.id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []model.OrderWithItems{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			o           model.Order
			status      string
			itemID      *uuid.UUID
			productID   *uuid.UUID
			productName *string
			quantity    *int32
			price       decimal.NullDecimal
		)
		if err := rows.Scan(
			&o.ID, &o.MerchantID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.TotalAmount, &status, &o.PaymentProofPath, &o.CreatedAt,
			&itemID, &productID, &productName, &quantity, &price,
		); err != nil {
			return nil, err
		}
		o.Status = model.OrderStatus(status)

		i, ok := index[o.ID]
		if !ok {
			i = len(orders)
			index[o.ID] = i
			orders = append(orders, model.OrderWithItems{Order: o, Items: []model.OrderItem{}})
		}
		if itemID == nil {
			continue
		}

		item := model.OrderItem{ID: *itemID, OrderID: o.ID, ProductID: productID, Price: price.Decimal}
		if productName != nil {
			item.ProductName = *productName
		}
		if quantity != nil {
			item.Quantity = int(*quantity)
		}
		orders[i].Items = append(orders[i].Items, item)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) ListOrders(ctx context.Context, merchantID uuid.UUID) ([]model.OrderWithItems, error) {
	return r.queryOrders(ctx, `o.merchant_id = $1`, merchantID)
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (model.OrderWithItems, error) {
	orders, err := r.queryOrders(ctx, `o.id = $1`, id)
	if err != nil {
		return model.OrderWithItems{}, err
	}
	if len(orders) == 0 {
		return model.OrderWithItems{}, ErrNotFound
	}
	return orders[0], nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) OrderStats(ctx context.Context, merchantID uuid.UUID) (model.DashboardSummary, error) {
	var s model.DashboardSummary
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ('paid', 'shipped')), 0)
		FROM orders
		WHERE merchant_id = $1`, merchantID,
	).Scan(&s.OrderCount, &s.PendingOrders, &s.Revenue)
	return s, err
}
