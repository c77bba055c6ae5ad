package domain

import "time"

type OrderCreatedEvent struct {
	OrderID    string    `json:"orderId"`
	RoomID     string    `json:"roomId"`
	SubTotal   int64     `json:"subTotal"`
	ItemCount  int       `json:"itemCount"`
	ExternalID string    `json:"externalId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Room channel event names. Delivery is best effort and at most once per
// connected subscriber; disconnected guests re-fetch through the poll path.
const (
	EventOrderStatus   = "order-status"
	EventPaymentStatus = "payment-status"

	PaymentEventConfirmed = "payment-confirmed"
	PaymentEventFailed    = "payment-failed"
)

type OrderStatusEvent struct {
	Event   string      `json:"event"`
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
	Reason  string      `json:"reason,omitempty"`
}

type PaymentStatusEvent struct {
	Event   string        `json:"event"`
	OrderID string        `json:"order_id"`
	Status  PaymentStatus `json:"status"`
	Type    string        `json:"type"`
}
