package cart

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

func product(price string) model.Product {
	return model.Product{ID: uuid.New(), Name: "p-" + price, Price: decimal.RequireFromString(price)}
}

func TestAddIncrementsExistingLine(t *testing.T) {
	a := product("10.00")

	l := Lines{}.Add(a).Add(a)
	require.Len(t, l, 1)
	assert.Equal(t, 2, l[0].Quantity)
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	a, b := product("1"), product("2")
	base := Lines{}.Add(a)

	_ = base.Add(a)
	_ = base.Add(b)
	_ = base.AdjustQuantity(a.ID, 5)
	_ = base.Remove(a.ID)

	require.Len(t, base, 1)
	assert.Equal(t, 1, base[0].Quantity)
}

func TestAdjustQuantity(t *testing.T) {
	a, b := product("3.00"), product("4.00")
	l := Lines{}.Add(a).Add(b)

	tests := []struct {
		name  string
		id    uuid.UUID
		delta int
		want  map[uuid.UUID]int
	}{
		{"increase", a.ID, 2, map[uuid.UUID]int{a.ID: 3, b.ID: 1}},
		{"to zero removes", a.ID, -1, map[uuid.UUID]int{b.ID: 1}},
		{"below zero clamps and removes", b.ID, -10, map[uuid.UUID]int{a.ID: 1}},
		{"unknown id is a no-op", uuid.New(), 3, map[uuid.UUID]int{a.ID: 1, b.ID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[uuid.UUID]int{}
			for _, it := range l.AdjustQuantity(tt.id, tt.delta) {
				got[it.Product.ID] = it.Quantity
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoveIsUnconditional(t *testing.T) {
	a := product("1")
	l := Lines{}.Add(a).Add(a).Add(a)

	assert.Empty(t, l.Remove(a.ID))
	assert.Len(t, l.Remove(uuid.New()), 1)
}

func TestTotals(t *testing.T) {
	a, b := product("10.00"), product("5.50")

	l := Lines{}.Add(a).Add(a).Add(b)

	assert.Equal(t, 3, l.TotalItems())
	assert.True(t, decimal.RequireFromString("25.50").Equal(l.TotalPrice()), "got %s", l.TotalPrice())
}

func TestTotalPriceIsNotRounded(t *testing.T) {
	l := Lines{}.Add(product("0.333")).Add(product("0.333"))
	assert.Equal(t, "0.666", l.TotalPrice().String())
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalog := []model.Product{product("1.10"), product("2.20"), product("3.30"), product("0.05")}

	l := Lines{}
	for step := 0; step < 2000; step++ {
		p := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(3) {
		case 0:
			l = l.Add(p)
		case 1:
			l = l.AdjustQuantity(p.ID, rng.Intn(7)-3)
		case 2:
			if rng.Intn(4) == 0 {
				l = l.Remove(p.ID)
			}
		}

		seen := map[uuid.UUID]bool{}
		sum := 0
		price := decimal.Zero
		for _, it := range l {
			require.False(t, seen[it.Product.ID], "duplicate line at step %d", step)
			require.Greater(t, it.Quantity, 0, "non-positive quantity at step %d", step)
			seen[it.Product.ID] = true
			sum += it.Quantity
			price = price.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		require.Equal(t, sum, l.TotalItems())
		require.True(t, price.Equal(l.TotalPrice()))
	}
}

func TestNormalizeMergesAndDrops(t *testing.T) {
	a, b := product("1"), product("2")
	l := Lines{
		{Product: a, Quantity: 1},
		{Product: b, Quantity: 0},
		{Product: a, Quantity: 2},
		{Product: model.Product{}, Quantity: 3},
	}.normalize()

	require.Len(t, l, 1)
	assert.Equal(t, a.ID, l[0].Product.ID)
	assert.Equal(t, 3, l[0].Quantity)
}
