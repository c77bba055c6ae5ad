package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"roomservice/internal/domain"
	"roomservice/internal/infra"
	"roomservice/internal/infra/xendit"
	"roomservice/internal/repository"

	"github.com/go-redis/redis/v8"
)

const paymentStatusCacheTTL = 5 * time.Second

// PaymentIntent pairs an order's external reference with the provider-side
// invoice the guest pays against. At most one live intent exists per order.
type PaymentIntent struct {
	OrderID    string `json:"orderId"`
	ExternalID string `json:"externalId"`
	InvoiceID  string `json:"invoiceId"`
	InvoiceURL string `json:"invoiceUrl"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

type ReconciliationResult struct {
	OrderID       string               `json:"orderId"`
	ExternalID    string               `json:"externalId"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	Applied       bool                 `json:"applied"`
}

type PaymentStatusResult struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
}

type PaymentService struct {
	repo         repository.OrderRepository
	invoices     infra.InvoiceClientInterface
	notifier     infra.NotifierInterface
	webhookToken string
	redisClient  *redis.Client
}

func NewPaymentService(r repository.OrderRepository, invoices infra.InvoiceClientInterface, n infra.NotifierInterface, webhookToken string) *PaymentService {
	return &PaymentService{
		repo:         r,
		invoices:     invoices,
		notifier:     n,
		webhookToken: webhookToken,
	}
}

// SetRedisClient enables the short-lived cache in front of the payment
// status poll path.
func (s *PaymentService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// BeginPaymentIntent requests a hosted invoice for the order. Re-invoking
// it for an order that already carries an invoice returns the existing
// intent unchanged; a second invoice is never created for the same order.
func (s *PaymentService) BeginPaymentIntent(ctx context.Context, orderID string, methods []xendit.PaymentMethod) (*PaymentIntent, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if order.PaymentID != "" {
		return &PaymentIntent{
			OrderID:    order.ID,
			ExternalID: order.ExternalID,
			InvoiceID:  order.PaymentID,
			InvoiceURL: order.PaymentURL,
		}, nil
	}

	// the external reference must correlate exactly one order to one
	// invoice; a reference pointing at a different order would tie two
	// orders to the same invoice
	owner, err := s.repo.FindByExternalID(ctx, order.ExternalID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.ID != order.ID {
		return nil, domain.ErrConflict
	}

	displayItems := make([]xendit.DisplayItem, 0, len(order.Items))
	for _, item := range order.Items {
		displayItems = append(displayItems, xendit.DisplayItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		})
	}
	req := xendit.CreateInvoiceRequest{
		ExternalID:     order.ExternalID,
		Amount:         order.SubTotal,
		PaymentMethods: methods,
		Items:          displayItems,
	}
	if order.GuestPhone != "" {
		req.Customer = &xendit.Customer{MobileNumber: order.GuestPhone}
	}

	invoice, err := s.invoices.CreateInvoice(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	intent := &PaymentIntent{
		OrderID:    order.ID,
		ExternalID: order.ExternalID,
		InvoiceID:  invoice.ID,
		InvoiceURL: invoice.InvoiceURL,
		ExpiryDate: invoice.ExpiryDate,
	}

	method := ""
	if len(methods) > 0 {
		method = string(methods[0])
	}
	if err := s.repo.SetPaymentLink(ctx, order.ID, invoice.ID, invoice.InvoiceURL, method); err != nil {
		// The invoice already exists at the provider, so the guest must
		// still get the URL; the dangling linkage needs out-of-band
		// reconciliation and is flagged here, not swallowed.
		log.Printf("RECONCILE: invoice %s created for order %s but linkage write failed: %v", invoice.ID, order.ID, err)
	}

	return intent, nil
}

// HandleInvoiceCallback applies one provider callback to local state.
// Redelivery of the same callback is a safe no-op, and a stale callback
// can never move a PAID order backward.
func (s *PaymentService) HandleInvoiceCallback(ctx context.Context, rawPayload []byte, callbackToken string) (*ReconciliationResult, error) {
	if s.webhookToken == "" || callbackToken != s.webhookToken {
		log.Printf("webhook rejected: callback token mismatch")
		return nil, domain.ErrUnauthorized
	}

	var payload xendit.InvoiceCallback
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		return nil, &domain.ValidationError{Field: "payload", Reason: "malformed callback body"}
	}
	if payload.ExternalID == "" {
		return nil, &domain.ValidationError{Field: "external_id", Reason: "missing"}
	}

	order, err := s.repo.FindByExternalID(ctx, payload.ExternalID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		log.Printf("webhook for unknown external_id %s", payload.ExternalID)
		return nil, domain.ErrOrderNotFound
	}

	status := xendit.MapInvoiceStatus(payload.Status)

	update := repository.PaymentUpdate{
		Status:         status,
		PaymentID:      payload.ID,
		PaymentMethod:  payload.PaymentMethod,
		PaymentChannel: payload.PaymentChannel,
	}
	if payload.PaidAt != "" {
		if paidAt, perr := time.Parse(time.RFC3339, payload.PaidAt); perr == nil {
			update.PaidAt = &paidAt
		} else {
			log.Printf("unparseable paid_at %q on callback for %s", payload.PaidAt, payload.ExternalID)
		}
	}

	applied, err := s.repo.ApplyPaymentStatus(ctx, payload.ExternalID, update)
	if err != nil {
		return nil, err
	}

	if applied {
		s.invalidateStatusCache(ctx, order.ID)
		switch status {
		case domain.PaymentPaid:
			go s.notifyPaymentStatus(order.RoomID, order.ID, status, domain.PaymentEventConfirmed)
		case domain.PaymentExpired, domain.PaymentFailed:
			go s.notifyPaymentStatus(order.RoomID, order.ID, status, domain.PaymentEventFailed)
		}
	}

	return &ReconciliationResult{
		OrderID:       order.ID,
		ExternalID:    payload.ExternalID,
		PaymentStatus: status,
		Applied:       applied,
	}, nil
}

// GetPaymentStatus backs the guest poll endpoint, the fallback for missed
// realtime events.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, orderID string) (*PaymentStatusResult, error) {
	cacheKey := "payment-status:" + orderID

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var result PaymentStatusResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return &result, nil
			}
		}
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	result := &PaymentStatusResult{
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		PaidAt:        order.PaidAt,
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(result); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, paymentStatusCacheTTL)
		}
	}

	return result, nil
}

// MarkPaymentExpired is the direct idempotent write used when no gateway is
// in play. It goes through the same sticky-PAID predicate as the webhook.
func (s *PaymentService) MarkPaymentExpired(ctx context.Context, orderID string) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}

	applied, err := s.repo.ApplyPaymentStatus(ctx, order.ExternalID, repository.PaymentUpdate{
		Status: domain.PaymentExpired,
	})
	if err != nil {
		return err
	}
	if applied {
		s.invalidateStatusCache(ctx, order.ID)
		go s.notifyPaymentStatus(order.RoomID, order.ID, domain.PaymentExpired, domain.PaymentEventFailed)
	}
	return nil
}

func (s *PaymentService) notifyPaymentStatus(roomID, orderID string, status domain.PaymentStatus, eventType string) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	evt := domain.PaymentStatusEvent{
		Event:   domain.EventPaymentStatus,
		OrderID: orderID,
		Status:  status,
		Type:    eventType,
	}
	if err := s.notifier.NotifyRoom(ctx, roomID, evt); err != nil {
		log.Printf("Failed to notify room %s: %v", roomID, err)
	}
}

func (s *PaymentService) invalidateStatusCache(ctx context.Context, orderID string) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(ctx, "payment-status:"+orderID)
}
