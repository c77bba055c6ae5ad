package http

import "roomservice/internal/domain"

type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	UnitPrice  int64  `json:"unitPrice" binding:"min=0"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	Note       string `json:"note,omitempty" binding:"max=200"`
}

type CreateOrderRequest struct {
	RoomID     string             `json:"roomId" binding:"required"`
	GuestID    string             `json:"guestId" binding:"required"`
	Note       string             `json:"note,omitempty" binding:"max=200"`
	GuestPhone string             `json:"guestPhone,omitempty" binding:"max=20"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateOrderResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
	SubTotal   int64  `json:"subTotal"`
}

type BeginPaymentRequest struct {
	PaymentMethods []string `json:"paymentMethods,omitempty"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}
