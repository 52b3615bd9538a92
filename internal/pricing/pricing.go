// Package pricing holds the cart total arithmetic. Every cart mutation is
// expressed as a Delta and applied through Apply, so the denormalized
// TotalPrice is adjusted in exactly one place.
package pricing

import "github.com/sakashimaa/go-shop-api/internal/domain"

// LineTotal is the price of quantity units at unitPrice.
func LineTotal(unitPrice int64, quantity int32) int64 {
	return unitPrice * int64(quantity)
}

// Delta describes one cart mutation: Quantity units of a product added
// (positive) or removed (negative), priced at UnitPrice. UnitPrice is the
// catalog price at the time of the operation, which for removals may differ
// from the price the line was added at; the total then drifts from the sum
// of the line snapshots. That window is inherent to incremental updates and
// is accepted here.
type Delta struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int32
}

// Apply mutates cart in place: it adjusts the matching line's quantity (or
// appends a new line, snapshotting name and price), drops lines whose
// quantity reaches zero, and moves TotalPrice by UnitPrice*Quantity.
func Apply(cart *domain.Cart, d Delta) {
	idx := cart.FindItem(d.ProductID)

	switch {
	case idx == -1:
		if d.Quantity <= 0 {
			return
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:  d.ProductID,
			Name:       d.Name,
			Quantity:   d.Quantity,
			PriceAtAdd: d.UnitPrice,
		})
	default:
		cart.Items[idx].Quantity += d.Quantity
		if cart.Items[idx].Quantity <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		}
	}

	cart.TotalPrice += LineTotal(d.UnitPrice, d.Quantity)
}

// RecomputeTotal returns the sum of the line snapshots. Used at aggregate
// construction boundaries and in tests to check the incremental total.
func RecomputeTotal(items []domain.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += LineTotal(item.PriceAtAdd, item.Quantity)
	}
	return total
}
