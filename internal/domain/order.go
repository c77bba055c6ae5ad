package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID              string        `json:"id" gorm:"type:char(36);primaryKey"`
	RoomID          string        `json:"roomId" gorm:"type:char(36);not null;index"`
	GuestID         string        `json:"guestId" gorm:"type:char(36);not null;index"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" gorm:"type:varchar(16);not null;default:'PENDING'"`
	SubTotal        int64         `json:"subTotal" gorm:"not null"`
	ExternalID      string        `json:"externalId" gorm:"type:varchar(64);not null;uniqueIndex"`
	PaymentID       string        `json:"paymentId,omitempty" gorm:"type:varchar(64)"`
	PaymentURL      string        `json:"paymentUrl,omitempty" gorm:"type:varchar(512)"`
	PaymentMethod   string        `json:"paymentMethod,omitempty" gorm:"type:varchar(32)"`
	PaymentChannel  string        `json:"paymentChannel,omitempty" gorm:"type:varchar(32)"`
	PaidAt          *time.Time    `json:"paidAt,omitempty"`
	GuestPhone      string        `json:"guestPhone,omitempty" gorm:"type:varchar(20)"`
	Note            string        `json:"note,omitempty" gorm:"type:varchar(200)"`
	RejectionReason string        `json:"rejectionReason,omitempty" gorm:"type:varchar(200)"`
	Items           []LineItem    `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time     `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updatedAt" gorm:"autoUpdateTime"`
}

// LineItem is a snapshot of a menu item at order time. Menu edits after
// checkout must not change what the guest is charged, so name and unit
// price are copied here and never updated.
type LineItem struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	OrderID    string    `json:"orderId" gorm:"type:char(36);not null;index"`
	MenuItemID string    `json:"menuItemId" gorm:"type:char(36);not null"`
	Name       string    `json:"name" gorm:"type:varchar(120);not null"`
	UnitPrice  int64     `json:"unitPrice" gorm:"not null"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Note       string    `json:"note,omitempty" gorm:"type:varchar(200)"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

type LineItemInput struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

// NewOrder builds a PENDING order from the guest's cart. The subtotal is
// computed from the caller-supplied price snapshots, not re-fetched from
// the live catalog, so a menu edit between browsing and checkout cannot
// change the charged amount.
func NewOrder(roomID, guestID string, items []LineItemInput, note, guestPhone string) (*Order, error) {
	if roomID == "" {
		return nil, &ValidationError{Field: "roomId", Reason: "room is required"}
	}
	if guestID == "" {
		return nil, &ValidationError{Field: "guestId", Reason: "guest is required"}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "order requires at least one item"}
	}

	orderID := uuid.NewString()
	var subTotal int64
	lineItems := make([]LineItem, 0, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "quantity must be positive"}
		}
		if item.UnitPrice < 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].unitPrice", i), Reason: "unit price must not be negative"}
		}
		if item.Name == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].name", i), Reason: "name is required"}
		}
		subTotal += item.UnitPrice * int64(item.Quantity)
		lineItems = append(lineItems, LineItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			Note:       item.Note,
		})
	}

	now := time.Now().UTC()
	return &Order{
		ID:            orderID,
		RoomID:        roomID,
		GuestID:       guestID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		SubTotal:      subTotal,
		ExternalID:    NewExternalID(),
		GuestPhone:    guestPhone,
		Note:          note,
		Items:         lineItems,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewExternalID returns a fresh payment correlation reference of the form
// order-<unix seconds>-<12 hex chars>. Uniqueness is enforced by the
// database; callers retry with a new reference on collision.
func NewExternalID() string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("order-%d-%s", time.Now().Unix(), hex.EncodeToString(buf))
}
