package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

// Key is the storage key of a storefront's cart.
func Key(merchantID string) string {
	return "cart-" + merchantID
}

// Store is the cart of one storefront. It is not safe for concurrent use;
// concurrent writers on the same key overwrite each other (last write wins).
type Store struct {
	merchantID string
	storage    Storage
	lines      Lines
}

// Load hydrates the store from storage. A missing key starts an empty cart,
// and so does unreadable data, which is logged and overwritten on the next write.
func Load(ctx context.Context, storage Storage, merchantID string) (*Store, error) {
	s := &Store{merchantID: merchantID, storage: storage, lines: Lines{}}

	raw, err := storage.GetItem(ctx, Key(merchantID))
	if err != nil {
		if errors.Is(err, ErrNoItem) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var lines Lines
	if err := json.Unmarshal(raw, &lines); err != nil {
		logger.WarnCtx(ctx, "Discarding unreadable cart", "merchant_id", merchantID, "error", err.Error())
		return s, nil
	}
	s.lines = lines.normalize()
	return s, nil
}

func (s *Store) MerchantID() string { return s.merchantID }

// Lines returns a copy of the current collection.
func (s *Store) Lines() Lines { return s.lines.clone() }

func (s *Store) TotalItems() int { return s.lines.TotalItems() }

func (s *Store) TotalPrice() decimal.Decimal { return s.lines.TotalPrice() }

func (s *Store) Empty() bool { return s.lines.Empty() }

func (s *Store) AddItem(ctx context.Context, p model.Product) error {
	return s.commit(ctx, s.lines.Add(p))
}

func (s *Store) SetQuantity(ctx context.Context, productID uuid.UUID, delta int) error {
	return s.commit(ctx, s.lines.AdjustQuantity(productID, delta))
}

func (s *Store) RemoveItem(ctx context.Context, productID uuid.UUID) error {
	return s.commit(ctx, s.lines.Remove(productID))
}

// Clear deletes the persisted key.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.RemoveItem(ctx, Key(s.merchantID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.lines = Lines{}
	return nil
}

// commit persists next and only then adopts it, so a failed write leaves the
// in-memory cart as it was.
func (s *Store) commit(ctx context.Context, next Lines) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.SetItem(ctx, Key(s.merchantID), raw); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	s.lines = next
	return nil
}

func (s *Store) View() model.CartView {
	items := []model.CartItem(s.lines.clone())
	return model.CartView{
		MerchantID: s.merchantID,
		Items:      items,
		TotalItems: s.TotalItems(),
		TotalPrice: s.TotalPrice(),
	}
}
