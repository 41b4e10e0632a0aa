package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

// MemoryStore keeps every table in process memory. It backs the core service
// when no DATABASE_URL is configured and serves as the fake in tests.
type MemoryStore struct {
	mu         sync.RWMutex
	profiles   map[uuid.UUID]model.Profile
	products   map[uuid.UUID]model.Product
	orders     map[uuid.UUID]model.Order
	orderItems map[uuid.UUID][]model.OrderItem

	// FailCreateOrder makes CreateOrder fail, for exercising checkout errors.
	FailCreateOrder error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:   make(map[uuid.UUID]model.Profile),
		products:   make(map[uuid.UUID]model.Product),
		orders:     make(map[uuid.UUID]model.Order),
		orderItems: make(map[uuid.UUID][]model.OrderItem),
	}
}

var (
	_ ProfileRepositoryInterface = (*MemoryStore)(nil)
	_ ProductRepositoryInterface = (*MemoryStore)(nil)
	_ OrderRepositoryInterface   = (*MemoryStore)(nil)
)

func (m *MemoryStore) GetProfileByID(_ context.Context, id uuid.UUID) (model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) CreateProfile(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[id]; ok {
		return false, nil
	}
	now := time.Now().UTC()
	m.profiles[id] = model.Profile{ID: id, CreatedAt: now, UpdatedAt: now}
	return true, nil
}

func (m *MemoryStore) UpdateProfile(_ context.Context, p model.Profile) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.profiles[p.ID]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	p.BusinessName = current.BusinessName
	p.WhatsappNumber = current.WhatsappNumber
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.profiles[p.ID] = p
	return p, nil
}

func (m *MemoryStore) ListProducts(_ context.Context, params model.ProductListParams) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := []model.Product{}
	for _, p := range m.products {
		if p.UserID != params.OwnerID {
			continue
		}
		if params.ActiveOnly && !p.Active {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID.String() > products[j].ID.String()
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (m *MemoryStore) GetProductByID(_ context.Context, id uuid.UUID) (model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.UserID]; !ok {
		return model.Product{}, ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *MemoryStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)

	// order_items.product_id is ON DELETE SET NULL
	for orderID, items := range m.orderItems {
		for i := range items {
			if items[i].ProductID != nil && *items[i].ProductID == id {
				items[i].ProductID = nil
			}
		}
		m.orderItems[orderID] = items
	}
	return nil
}

func (m *MemoryStore) CountProducts(_ context.Context, ownerID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, p := range m.products {
		if p.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateOrder(_ context.Context, order model.Order, items []model.OrderItem) (model.OrderWithItems, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateOrder != nil {
		return model.OrderWithItems{}, m.FailCreateOrder
	}
	if _, ok := m.profiles[order.MerchantID]; !ok {
		return model.OrderWithItems{}, ErrNotFound
	}

	stored := make([]model.OrderItem, len(items))
	for i, it := range items {
		it.OrderID = order.ID
		stored[i] = it
	}
	m.orders[order.ID] = order
	m.orderItems[order.ID] = stored

	out := make([]model.OrderItem, len(stored))
	copy(out, stored)
	return model.OrderWithItems{Order: order, Items: out}, nil
}

// withItems must be called with the lock held.
func (m *MemoryStore) withItems(o model.Order) model.OrderWithItems {
	items := make([]model.OrderItem, 0, len(m.orderItems[o.ID]))
	for _, it := range m.orderItems[o.ID] {
		if it.ProductID != nil {
			if p, ok := m.products[*it.ProductID]; ok {
				it.ProductName = p.Name
			}
		}
		items = append(items, it)
	}
	return model.OrderWithItems{Order: o, Items: items}
}

func (m *MemoryStore) ListOrders(_ context.Context, merchantID uuid.UUID) ([]model.OrderWithItems, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := []model.OrderWithItems{}
	for _, o := range m.orders {
		if o.MerchantID == merchantID {
			orders = append(orders, m.withItems(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m *MemoryStore) GetOrderByID(_ context.Context, id uuid.UUID) (model.OrderWithItems, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return model.OrderWithItems{}, ErrNotFound
	}
	return m.withItems(o), nil
}

func (m *MemoryStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *MemoryStore) OrderStats(_ context.Context, merchantID uuid.UUID) (model.DashboardSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := model.DashboardSummary{Revenue: decimal.Zero}
	for _, o := range m.orders {
		if o.MerchantID != merchantID {
			continue
		}
		s.OrderCount++
		switch o.Status {
		case model.OrderStatusPending:
			s.PendingOrders++
		case model.OrderStatusPaid, model.OrderStatusShipped:
			s.Revenue = s.Revenue.Add(o.TotalAmount)
		}
	}
	return s, nil
}

// InsertOrderOnly stores an order row with no items, the shape left behind by
// an interrupted legacy checkout.
func (m *MemoryStore) InsertOrderOnly(o model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}
