package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

func (f *fixture) order(t *testing.T, merchant uuid.UUID, status model.OrderStatus, total string, createdAt time.Time) model.Order {
	t.Helper()
	o := model.Order{
		ID: uuid.New(), MerchantID: merchant, CustomerName: "c", CustomerPhone: "1",
		TotalAmount: decimal.RequireFromString(total), Status: status,
		PaymentProofPath: merchant.String() + "-1.png", CreatedAt: createdAt,
	}
	_, err := f.store.CreateOrder(context.Background(), o, nil)
	require.NoError(t, err)
	return o
}

func TestListOrdersNewestFirstWithNextStatuses(t *testing.T) {
	f := newFixture(t)
	merchant := f.merchant(t)
	other := f.merchant(t)
	base := time.Now().UTC()

	older := f.order(t, merchant, model.OrderStatusPaid, "1", base)
	newer := f.order(t, merchant, model.OrderStatusPending, "2", base.Add(time.Minute))
	f.order(t, other, model.OrderStatusPending, "3", base)

	views, err := f.orders.ListOrders(context.Background(), merchant)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, newer.ID, views[0].ID)
	assert.Equal(t, []model.OrderStatus{model.OrderStatusPaid, model.OrderStatusCancelled}, views[0].NextStatuses)
	assert.Equal(t, older.ID, views[1].ID)
	assert.Equal(t, []model.OrderStatus{model.OrderStatusShipped}, views[1].NextStatuses)
	assert.NotNil(t, views[0].Items)
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to model.OrderStatus
		ok       bool
	}{
		{model.OrderStatusPending, model.OrderStatusPaid, true},
		{model.OrderStatusPending, model.OrderStatusCancelled, true},
		{model.OrderStatusPaid, model.OrderStatusShipped, true},
		{model.OrderStatusPending, model.OrderStatusShipped, false},
		{model.OrderStatusPaid, model.OrderStatusCancelled, false},
		{model.OrderStatusCancelled, model.OrderStatusPaid, false},
		{model.OrderStatusShipped, model.OrderStatusPending, false},
		{model.OrderStatusPending, model.OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			merchant := f.merchant(t)
			o := f.order(t, merchant, tt.from, "1", time.Now())

			view, err := f.orders.UpdateStatus(ctx, merchant, o.ID, tt.to)
			stored, getErr := f.store.GetOrderByID(ctx, o.ID)
			require.NoError(t, getErr)

			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, view.Status)
				assert.Equal(t, tt.to, stored.Status)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, stored.Status)
		})
	}
}

func TestUpdateStatusChecksOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	merchant := f.merchant(t)
	intruder := f.merchant(t)
	o := f.order(t, merchant, model.OrderStatusPending, "1", time.Now())

	_, err := f.orders.UpdateStatus(ctx, intruder, o.ID, model.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.orders.UpdateStatus(ctx, merchant, uuid.New(), model.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.orders.UpdateStatus(ctx, merchant, o.ID, "refunded")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestRevealProof(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	merchant := f.merchant(t)
	o := f.order(t, merchant, model.OrderStatusPending, "1", time.Now())

	signed, err := f.orders.RevealProof(ctx, merchant, o.ID)
	require.NoError(t, err)
	assert.Contains(t, signed.URL, o.PaymentProofPath)
	assert.Equal(t, []string{BucketProofs + "/" + o.PaymentProofPath + "@1h0m0s"}, f.files.signed)

	_, err = f.orders.RevealProof(ctx, f.merchant(t), o.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	f.files.signErr = clients.ErrFileNotFound
	_, err = f.orders.RevealProof(ctx, merchant, o.ID)
	assert.ErrorIs(t, err, ErrNoProof)
}

func TestRevealProofWithoutPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	merchant := f.merchant(t)
	id := uuid.New()
	f.store.InsertOrderOnly(model.Order{ID: id, MerchantID: merchant, Status: model.OrderStatusPending})

	_, err := f.orders.RevealProof(ctx, merchant, id)
	assert.ErrorIs(t, err, ErrNoProof)
	assert.Empty(t, f.files.signed)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	merchant := f.merchant(t)
	f.product(t, merchant, "A", "1")
	f.product(t, merchant, "B", "1")
	f.order(t, merchant, model.OrderStatusPending, "10", time.Now())
	f.order(t, merchant, model.OrderStatusShipped, "25.50", time.Now())

	s, err := f.orders.Summary(context.Background(), merchant)
	require.NoError(t, err)
	assert.Equal(t, 2, s.ProductCount)
	assert.Equal(t, 2, s.OrderCount)
	assert.Equal(t, 1, s.PendingOrders)
	assert.Equal(t, "25.5", s.Revenue.String())
}
