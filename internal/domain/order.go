package domain

import "time"

type OrderStatus string

const (
	// OrderStatusProcessing is the initial status of every order. The
	// admin status update accepts arbitrary strings, so the named set here
	// is not closed; only Cancelled is terminal.
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

const PaymentStatusPending = "Pending"

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

// OrderItem is immutable once the order is placed.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	Price     int64  `json:"price"`
}

// Order is created at checkout and never deleted; cancellation is a status
// transition. TotalAmount is computed once at placement and never recomputed.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	PaymentStatus   string      `json:"payment_status"`
	OrderStatus     OrderStatus `json:"order_status"`
	TotalAmount     int64       `json:"total_amount"`
	PlacedAt        time.Time   `json:"placed_at"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (o *Order) CalculateTotal() {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	o.TotalAmount = total
}
