package domain

// Events emitted through the outbox on topic order_events.

type OrderPlacedEvent struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount int64       `json:"total_amount"`
}

type OrderStatusChangedEvent struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type OrderCancelledEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}
