package domain

// RoomBillingSummary is a derived view over a room's unbilled orders.
// It is recomputed on demand and never persisted.
type RoomBillingSummary struct {
	RoomID         string `json:"roomId"`
	OrderCount     int    `json:"orderCount"`
	DeliveredCount int    `json:"deliveredCount"`
	TotalAmount    int64  `json:"totalAmount"`
}
