package mq

import "time"

// Routing keys on the marketplace events exchange.
const (
	RoutingKeyOrderPlaced            = "order.placed"
	RoutingKeyPriceDropped           = "price.dropped"
	RoutingKeyNotificationDispatched = "notification.dispatched"
)

type OrderPlacedPayload struct {
	OrderID     int64     `json:"order_id"`
	BuyerID     int64     `json:"buyer_id"`
	SellerID    int64     `json:"seller_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Amount      float64   `json:"amount"`
	PlacedAt    time.Time `json:"placed_at"`
}

// NotificationDispatchedPayload announces a persisted notification log so
// downstream consumers (digests, analytics) can react without polling.
type NotificationDispatchedPayload struct {
	LogID        int64     `json:"log_id"`
	UserID       int64     `json:"user_id"`
	SubjectType  string    `json:"subject_type"`
	SubjectID    int64     `json:"subject_id"`
	Action       string    `json:"action"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

type PriceDroppedPayload struct {
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	OldPrice    float64   `json:"old_price"`
	NewPrice    float64   `json:"new_price"`
	ChangedAt   time.Time `json:"changed_at"`
}
