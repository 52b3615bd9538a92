package pricing

import (
	"testing"

	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice int64
		quantity  int32
		want      int64
	}{
		{"single unit", 10, 1, 10},
		{"several units", 10, 3, 30},
		{"zero quantity", 99, 0, 0},
		{"negative quantity refunds", 20, -4, -80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, LineTotal(tt.unitPrice, tt.quantity))
		})
	}
}

func TestApply_NewLine(t *testing.T) {
	cart := &domain.Cart{}

	Apply(cart, Delta{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 3})

	require.Len(t, cart.Items, 1)
	require.Equal(t, "Widget", cart.Items[0].Name)
	require.Equal(t, int32(3), cart.Items[0].Quantity)
	require.Equal(t, int64(10), cart.Items[0].PriceAtAdd)
	require.Equal(t, int64(30), cart.TotalPrice)
}

func TestApply_MergesByProductID(t *testing.T) {
	cart := &domain.Cart{}

	Apply(cart, Delta{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 3})
	Apply(cart, Delta{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 2})

	require.Len(t, cart.Items, 1)
	require.Equal(t, int32(5), cart.Items[0].Quantity)
	require.Equal(t, int64(50), cart.TotalPrice)
}

func TestApply_DistinctProductsSameName(t *testing.T) {
	// Two catalog entries may share a display name; lines must not collide.
	cart := &domain.Cart{}

	Apply(cart, Delta{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 1})
	Apply(cart, Delta{ProductID: "p2", Name: "Widget", UnitPrice: 15, Quantity: 1})

	require.Len(t, cart.Items, 2)
	require.Equal(t, int64(25), cart.TotalPrice)
}

func TestApply_RemovalDropsLine(t *testing.T) {
	cart := &domain.Cart{}

	Apply(cart, Delta{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 2})
	Apply(cart, Delta{ProductID: "p1", UnitPrice: 10, Quantity: -2})

	require.Empty(t, cart.Items)
	require.Zero(t, cart.TotalPrice)
}

func TestApply_RemovalAtChangedPriceDrifts(t *testing.T) {
	cart := &domain.Cart{}

	Apply(cart, Delta{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 2})
	// catalog price moved to 12 between add and remove
	Apply(cart, Delta{ProductID: "p1", UnitPrice: 12, Quantity: -2})

	require.Empty(t, cart.Items)
	require.Equal(t, int64(-4), cart.TotalPrice)
}

func TestApply_RemoveMissingProductIsNoop(t *testing.T) {
	cart := &domain.Cart{}

	Apply(cart, Delta{ProductID: "ghost", UnitPrice: 10, Quantity: -1})

	require.Empty(t, cart.Items)
	require.Zero(t, cart.TotalPrice)
}

func TestApply_TotalMatchesRecomputeAtStablePrices(t *testing.T) {
	cart := &domain.Cart{}

	deltas := []Delta{
		{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 3},
		{ProductID: "p2", Name: "Gadget", UnitPrice: 20, Quantity: 1},
		{ProductID: "p1", Name: "Widget", UnitPrice: 10, Quantity: 2},
		{ProductID: "p2", UnitPrice: 20, Quantity: -1},
	}

	for _, d := range deltas {
		Apply(cart, d)
		require.Equal(t, RecomputeTotal(cart.Items), cart.TotalPrice)
	}
}
