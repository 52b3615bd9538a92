package domain

import "time"

// CartItem is one line of a cart. Lines are keyed by ProductID; Name and
// PriceAtAdd are snapshots taken when the line was first added and are not
// updated when the catalog changes.
type CartItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	PriceAtAdd int64  `json:"price_at_add"`
}

// Cart is the per-user aggregate. TotalPrice is denormalized: it is adjusted
// incrementally on every mutation rather than recomputed from the lines.
// Version backs optimistic concurrency on the stored document.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Items      []CartItem `json:"items"`
	TotalPrice int64      `json:"total_price"`
	Version    int64      `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FindItem returns the index of the line holding productID, or -1.
func (c *Cart) FindItem(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
