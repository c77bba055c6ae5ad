package services

import (
	"context"
	"log"
	"time"

	"roomservice/internal/domain"
	"roomservice/internal/infra"
	rabbit "roomservice/internal/infra/rabbitmq"
	"roomservice/internal/repository"

	"golang.org/x/sync/errgroup"
)

// createRetries bounds how often order creation retries with a fresh
// external reference after a uniqueness collision.
const createRetries = 3

type OrderService struct {
	repo      repository.OrderRepository
	publisher rabbit.PublisherInterface
	notifier  infra.NotifierInterface
	invoices  infra.InvoiceClientInterface
}

func NewOrderService(r repository.OrderRepository, pub rabbit.PublisherInterface, n infra.NotifierInterface) *OrderService {
	return &OrderService{
		repo:      r,
		publisher: pub,
		notifier:  n,
	}
}

// SetInvoiceClient enables best-effort invoice expiry when staff reject an
// order that still has an unpaid invoice open.
func (s *OrderService) SetInvoiceClient(client infra.InvoiceClientInterface) {
	s.invoices = client
}

func (s *OrderService) CreateOrder(ctx context.Context, roomID, guestID string, items []domain.LineItemInput, note, guestPhone string) (*domain.Order, error) {
	order, err := domain.NewOrder(roomID, guestID, items, note, guestPhone)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		err = s.repo.Create(ctx, order)
		if err == nil {
			break
		}
		if err != domain.ErrExternalRefConflict {
			return nil, err
		}
		if attempt+1 >= createRetries {
			log.Printf("giving up on order creation after %d reference collisions", createRetries)
			return nil, domain.ErrConflict
		}
		log.Printf("external reference %s collided, retrying with a fresh one", order.ExternalID)
		order.ExternalID = domain.NewExternalID()
	}

	go s.publishOrderCreatedEvent(context.Background(), order)

	return order, nil
}

func (s *OrderService) publishOrderCreatedEvent(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	evt := domain.OrderCreatedEvent{
		OrderID:    order.ID,
		RoomID:     order.RoomID,
		SubTotal:   order.SubTotal,
		ItemCount:  len(order.Items),
		ExternalID: order.ExternalID,
		CreatedAt:  order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("Failed to publish order.created event: %v", err)
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) GetGuestOrders(ctx context.Context, roomID, guestID string) ([]domain.Order, error) {
	return s.repo.FindByGuest(ctx, roomID, guestID)
}

func (s *OrderService) AcceptOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.StatusAccepted, "")
}

func (s *OrderService) RejectOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	if reason == "" {
		return nil, &domain.ValidationError{Field: "reason", Reason: "rejection requires a reason"}
	}
	order, err := s.transition(ctx, orderID, domain.StatusRejected, reason)
	if err != nil {
		return nil, err
	}
	if s.invoices != nil && order.PaymentID != "" && order.PaymentStatus != domain.PaymentPaid {
		go s.expireInvoice(order.PaymentID)
	}
	return order, nil
}

// AdvanceOrder moves an order one step along the kitchen workflow.
// Skipping states is rejected by the transition table.
func (s *OrderService) AdvanceOrder(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	switch to {
	case domain.StatusInPrep, domain.StatusReady, domain.StatusDelivered:
	default:
		return nil, &domain.ValidationError{Field: "status", Reason: "must be one of IN_PREP, READY, DELIVERED"}
	}
	return s.transition(ctx, orderID, to, "")
}

func (s *OrderService) MarkOrderBilled(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.StatusBilled, "")
}

// MarkRoomBilled bills every open order of a room at once and returns the
// affected order ids. Notifications fan out off the request path.
func (s *OrderService) MarkRoomBilled(ctx context.Context, roomID string) ([]string, error) {
	ids, err := s.repo.MarkRoomBilled(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	go func() {
		g := new(errgroup.Group)
		g.SetLimit(8)
		for _, id := range ids {
			orderID := id
			g.Go(func() error {
				s.notifyOrderStatus(roomID, orderID, domain.StatusBilled, "")
				return nil
			})
		}
		_ = g.Wait()
	}()

	return ids, nil
}

func (s *OrderService) RoomBillingSnapshot(ctx context.Context) ([]domain.RoomBillingSummary, error) {
	return s.repo.RoomBillingSnapshot(ctx)
}

// transition performs one conditional state change. The repository update
// is guarded by the state we just read, so a concurrent transition makes
// the update affect zero rows instead of overwriting newer state; the
// error then names the fresh state, not the stale one.
func (s *OrderService) transition(ctx context.Context, orderID string, to domain.OrderStatus, reason string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	// marking a billed order billed again is a no-op, not an error
	if to == domain.StatusBilled && order.Status == domain.StatusBilled {
		return order, nil
	}
	if !domain.CanTransition(order.Status, to) {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: to}
	}

	applied, err := s.repo.UpdateStatus(ctx, orderID, []domain.OrderStatus{order.Status}, to, reason)
	if err != nil {
		return nil, err
	}
	if !applied {
		fresh, ferr := s.repo.FindByID(ctx, orderID)
		if ferr != nil {
			return nil, ferr
		}
		if fresh == nil {
			return nil, domain.ErrOrderNotFound
		}
		if to == domain.StatusBilled && fresh.Status == domain.StatusBilled {
			return fresh, nil
		}
		return nil, &domain.InvalidTransitionError{From: fresh.Status, To: to}
	}

	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	if to == domain.StatusRejected {
		order.RejectionReason = reason
	}

	go s.notifyOrderStatus(order.RoomID, order.ID, to, reason)

	return order, nil
}

func (s *OrderService) notifyOrderStatus(roomID, orderID string, status domain.OrderStatus, reason string) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	evt := domain.OrderStatusEvent{
		Event:   domain.EventOrderStatus,
		OrderID: orderID,
		Status:  status,
		Reason:  reason,
	}
	if err := s.notifier.NotifyRoom(ctx, roomID, evt); err != nil {
		log.Printf("Failed to notify room %s: %v", roomID, err)
	}
}

func (s *OrderService) expireInvoice(invoiceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.invoices.ExpireInvoice(ctx, invoiceID); err != nil {
		log.Printf("Failed to expire invoice %s: %v", invoiceID, err)
	}
}
