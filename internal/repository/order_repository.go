package repository

import (
	"context"
	"time"

	"roomservice/internal/domain"
)

type PaymentUpdate struct {
	Status         domain.PaymentStatus
	PaymentID      string
	PaymentMethod  string
	PaymentChannel string
	PaidAt         *time.Time
}

type OrderRepository interface {
	// Create persists the order and its line items as one transaction.
	// A duplicate external_id fails with domain.ErrExternalRefConflict
	// and writes nothing.
	Create(ctx context.Context, order *domain.Order) error

	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Order, error)
	FindByGuest(ctx context.Context, roomID, guestID string) ([]domain.Order, error)

	// UpdateStatus moves the order from one of the expected states to
	// the target state. It reports false when the row no longer matches
	// the expectation, so a stale view never overwrites a newer state.
	UpdateStatus(ctx context.Context, orderID string, expected []domain.OrderStatus, to domain.OrderStatus, reason string) (bool, error)

	// MarkRoomBilled bills every non-BILLED order of the room and returns
	// the ids of the orders it touched.
	MarkRoomBilled(ctx context.Context, roomID string) ([]string, error)

	// SetPaymentLink writes the provider invoice linkage onto the order.
	SetPaymentLink(ctx context.Context, orderID, paymentID, paymentURL, paymentMethod string) error

	// ApplyPaymentStatus applies a reconciled payment status keyed by
	// external reference. It reports false when the update is a no-op:
	// the status already matches, or the order is PAID and the incoming
	// status would move it backward.
	ApplyPaymentStatus(ctx context.Context, externalID string, update PaymentUpdate) (bool, error)

	RoomBillingSnapshot(ctx context.Context) ([]domain.RoomBillingSummary, error)
}
