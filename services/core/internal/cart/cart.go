// Package cart holds the per-storefront shopping cart.
//
// Lines is an immutable collection: every operation returns a new value and
// leaves the receiver untouched. Store binds a Lines value to a storefront key
// in a Storage and writes the full collection after every mutation.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

// Lines holds at most one item per product id and never an item with quantity <= 0.
type Lines []model.CartItem

func (l Lines) clone() Lines {
	out := make(Lines, len(l))
	copy(out, l)
	return out
}

func (l Lines) indexOf(productID uuid.UUID) int {
	for i, it := range l {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add increments the line for p, or appends p with quantity 1.
func (l Lines) Add(p model.Product) Lines {
	out := l.clone()
	if i := out.indexOf(p.ID); i >= 0 {
		out[i].Quantity++
		return out
	}
	return append(out, model.CartItem{Product: p, Quantity: 1})
}

// AdjustQuantity adds delta to the line's quantity, clamped at 0.
// A line reaching 0 is dropped. Unknown ids are a no-op.
func (l Lines) AdjustQuantity(productID uuid.UUID, delta int) Lines {
	i := l.indexOf(productID)
	if i < 0 {
		return l.clone()
	}

	q := l[i].Quantity + delta
	if q <= 0 {
		return l.Remove(productID)
	}

	out := l.clone()
	out[i].Quantity = q
	return out
}

func (l Lines) Remove(productID uuid.UUID) Lines {
	out := make(Lines, 0, len(l))
	for _, it := range l {
		if it.Product.ID != productID {
			out = append(out, it)
		}
	}
	return out
}

func (l Lines) TotalItems() int {
	n := 0
	for _, it := range l {
		n += it.Quantity
	}
	return n
}

// TotalPrice is recomputed on every call and is not rounded.
func (l Lines) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (l Lines) Empty() bool {
	return len(l) == 0
}

// normalize merges duplicate ids and drops non-positive quantities, for data
// read back from storage that another writer may have produced.
func (l Lines) normalize() Lines {
	out := make(Lines, 0, len(l))
	for _, it := range l {
		if it.Quantity <= 0 || it.Product.ID == uuid.Nil {
			continue
		}
		if i := out.indexOf(it.Product.ID); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}
