package services

import (
	"time"

	"roomservice/internal/domain"
)

const (
	TestRoomID     = "room-1111"
	TestGuestID    = "guest-2222"
	TestOrderID    = "order-uuid-3333"
	TestExternalID = "order-1700000000-abcdef123456"
	TestInvoiceID  = "inv-4444"
	TestInvoiceURL = "https://checkout.example.com/inv-4444"
)

func CreateMockOrder(status domain.OrderStatus, paymentStatus domain.PaymentStatus) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:            TestOrderID,
		RoomID:        TestRoomID,
		GuestID:       TestGuestID,
		Status:        status,
		PaymentStatus: paymentStatus,
		SubTotal:      65000,
		ExternalID:    TestExternalID,
		Items: []domain.LineItem{
			{ID: "li-1", OrderID: TestOrderID, MenuItemID: "menu-a", Name: "Nasi Goreng", UnitPrice: 25000, Quantity: 2},
			{ID: "li-2", OrderID: TestOrderID, MenuItemID: "menu-b", Name: "Es Teh", UnitPrice: 15000, Quantity: 1},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func CreateMockItems() []domain.LineItemInput {
	return []domain.LineItemInput{
		{MenuItemID: "menu-a", Name: "Nasi Goreng", UnitPrice: 25000, Quantity: 2},
		{MenuItemID: "menu-b", Name: "Es Teh", UnitPrice: 15000, Quantity: 1},
	}
}
