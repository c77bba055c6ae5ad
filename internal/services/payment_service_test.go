package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"roomservice/internal/domain"
	"roomservice/internal/infra/xendit"
	"roomservice/internal/mocks"
	"roomservice/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testWebhookToken = "whsec-test-token"

func TestPaymentService_BeginPaymentIntent(t *testing.T) {
	t.Run("creates an invoice from the order snapshot", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockInvoices := new(mocks.MockInvoiceClient)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockInvoices.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(req xendit.CreateInvoiceRequest) bool {
			return req.ExternalID == TestExternalID &&
				req.Amount == 65000 &&
				len(req.Items) == 2
		})).Return(&xendit.Invoice{
			ID:         TestInvoiceID,
			ExternalID: TestExternalID,
			Status:     xendit.InvoicePending,
			InvoiceURL: TestInvoiceURL,
		}, nil)
		mockRepo.On("SetPaymentLink", mock.Anything, TestOrderID, TestInvoiceID, TestInvoiceURL, "QRIS").Return(nil)

		service := NewPaymentService(mockRepo, mockInvoices, nil, testWebhookToken)
		intent, err := service.BeginPaymentIntent(context.Background(), TestOrderID, []xendit.PaymentMethod{xendit.MethodQRIS})

		assert.NoError(t, err)
		assert.Equal(t, TestInvoiceID, intent.InvoiceID)
		assert.Equal(t, TestInvoiceURL, intent.InvoiceURL)
		assert.Equal(t, TestExternalID, intent.ExternalID)

		mockRepo.AssertExpectations(t)
		mockInvoices.AssertExpectations(t)
	})

	t.Run("existing invoice is returned, never recreated", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockInvoices := new(mocks.MockInvoiceClient)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		order.PaymentID = TestInvoiceID
		order.PaymentURL = TestInvoiceURL
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)

		service := NewPaymentService(mockRepo, mockInvoices, nil, testWebhookToken)
		intent, err := service.BeginPaymentIntent(context.Background(), TestOrderID, nil)

		assert.NoError(t, err)
		assert.Equal(t, TestInvoiceID, intent.InvoiceID)
		assert.Equal(t, TestInvoiceURL, intent.InvoiceURL)

		mockInvoices.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "SetPaymentLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("order not found", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)

		service := NewPaymentService(mockRepo, new(mocks.MockInvoiceClient), nil, testWebhookToken)
		intent, err := service.BeginPaymentIntent(context.Background(), TestOrderID, nil)

		assert.Nil(t, intent)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("external reference owned by another order", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		other := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		other.ID = "some-other-order"
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(other, nil)

		service := NewPaymentService(mockRepo, new(mocks.MockInvoiceClient), nil, testWebhookToken)
		intent, err := service.BeginPaymentIntent(context.Background(), TestOrderID, nil)

		assert.Nil(t, intent)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("gateway failure surfaces as upstream error", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockInvoices := new(mocks.MockInvoiceClient)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockInvoices.On("CreateInvoice", mock.Anything, mock.Anything).
			Return(nil, errors.New("502 from provider"))

		service := NewPaymentService(mockRepo, mockInvoices, nil, testWebhookToken)
		intent, err := service.BeginPaymentIntent(context.Background(), TestOrderID, nil)

		assert.Nil(t, intent)
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.Contains(t, err.Error(), "502 from provider")
	})

	t.Run("linkage write failure still hands the guest the invoice", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockInvoices := new(mocks.MockInvoiceClient)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockInvoices.On("CreateInvoice", mock.Anything, mock.Anything).Return(&xendit.Invoice{
			ID:         TestInvoiceID,
			Status:     xendit.InvoicePending,
			InvoiceURL: TestInvoiceURL,
		}, nil)
		mockRepo.On("SetPaymentLink", mock.Anything, TestOrderID, TestInvoiceID, TestInvoiceURL, "").
			Return(errors.New("database error"))

		service := NewPaymentService(mockRepo, mockInvoices, nil, testWebhookToken)
		intent, err := service.BeginPaymentIntent(context.Background(), TestOrderID, nil)

		assert.NoError(t, err)
		assert.Equal(t, TestInvoiceID, intent.InvoiceID)
		mockRepo.AssertExpectations(t)
	})
}

func TestPaymentService_HandleInvoiceCallback(t *testing.T) {
	paidPayload := []byte(`{
		"id": "` + TestInvoiceID + `",
		"external_id": "` + TestExternalID + `",
		"status": "SETTLED",
		"amount": 65000,
		"paid_amount": 65000,
		"paid_at": "2024-01-15T10:30:00Z",
		"payment_method": "QRIS",
		"payment_channel": "QRIS"
	}`)

	t.Run("wrong token is rejected before any lookup", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)

		service := NewPaymentService(mockRepo, nil, nil, testWebhookToken)
		result, err := service.HandleInvoiceCallback(context.Background(), paidPayload, "wrong-token")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		mockRepo.AssertNotCalled(t, "FindByExternalID", mock.Anything, mock.Anything)
	})

	t.Run("unconfigured token rejects every callback", func(t *testing.T) {
		service := NewPaymentService(new(mocks.MockOrderRepository), nil, nil, "")
		_, err := service.HandleInvoiceCallback(context.Background(), paidPayload, "")

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("malformed payload", func(t *testing.T) {
		service := NewPaymentService(new(mocks.MockOrderRepository), nil, nil, testWebhookToken)
		_, err := service.HandleInvoiceCallback(context.Background(), []byte(`{not json`), testWebhookToken)

		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("unknown external reference", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(nil, nil)

		service := NewPaymentService(mockRepo, nil, nil, testWebhookToken)
		result, err := service.HandleInvoiceCallback(context.Background(), paidPayload, testWebhookToken)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("settled invoice marks the order paid and confirms once", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockNotifier := new(mocks.MockNotifier)

		order := CreateMockOrder(domain.StatusAccepted, domain.PaymentPending)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockRepo.On("ApplyPaymentStatus", mock.Anything, TestExternalID, mock.MatchedBy(func(u repository.PaymentUpdate) bool {
			return u.Status == domain.PaymentPaid &&
				u.PaymentID == TestInvoiceID &&
				u.PaymentMethod == "QRIS" &&
				u.PaidAt != nil
		})).Return(true, nil)
		mockNotifier.On("NotifyRoom", mock.Anything, TestRoomID, mock.MatchedBy(func(e any) bool {
			evt, ok := e.(domain.PaymentStatusEvent)
			return ok && evt.Type == domain.PaymentEventConfirmed && evt.Status == domain.PaymentPaid
		})).Return(nil).Once()

		service := NewPaymentService(mockRepo, nil, mockNotifier, testWebhookToken)
		result, err := service.HandleInvoiceCallback(context.Background(), paidPayload, testWebhookToken)

		assert.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, domain.PaymentPaid, result.PaymentStatus)

		time.Sleep(100 * time.Millisecond)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("redelivered callback is a silent no-op", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockNotifier := new(mocks.MockNotifier)

		order := CreateMockOrder(domain.StatusAccepted, domain.PaymentPaid)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockRepo.On("ApplyPaymentStatus", mock.Anything, TestExternalID, mock.Anything).Return(false, nil)

		service := NewPaymentService(mockRepo, nil, mockNotifier, testWebhookToken)
		result, err := service.HandleInvoiceCallback(context.Background(), paidPayload, testWebhookToken)

		assert.NoError(t, err)
		assert.False(t, result.Applied)

		time.Sleep(100 * time.Millisecond)
		mockNotifier.AssertNotCalled(t, "NotifyRoom", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale pending callback cannot undo a payment", func(t *testing.T) {
		stalePayload := []byte(`{"id": "` + TestInvoiceID + `", "external_id": "` + TestExternalID + `", "status": "PENDING"}`)

		mockRepo := new(mocks.MockOrderRepository)
		mockNotifier := new(mocks.MockNotifier)

		order := CreateMockOrder(domain.StatusAccepted, domain.PaymentPaid)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockRepo.On("ApplyPaymentStatus", mock.Anything, TestExternalID, mock.MatchedBy(func(u repository.PaymentUpdate) bool {
			return u.Status == domain.PaymentPending
		})).Return(false, nil)

		service := NewPaymentService(mockRepo, nil, mockNotifier, testWebhookToken)
		result, err := service.HandleInvoiceCallback(context.Background(), stalePayload, testWebhookToken)

		assert.NoError(t, err)
		assert.False(t, result.Applied)

		time.Sleep(100 * time.Millisecond)
		mockNotifier.AssertNotCalled(t, "NotifyRoom", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired invoice emits payment-failed", func(t *testing.T) {
		expiredPayload := []byte(`{"id": "` + TestInvoiceID + `", "external_id": "` + TestExternalID + `", "status": "EXPIRED"}`)

		mockRepo := new(mocks.MockOrderRepository)
		mockNotifier := new(mocks.MockNotifier)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockRepo.On("ApplyPaymentStatus", mock.Anything, TestExternalID, mock.MatchedBy(func(u repository.PaymentUpdate) bool {
			return u.Status == domain.PaymentExpired
		})).Return(true, nil)
		mockNotifier.On("NotifyRoom", mock.Anything, TestRoomID, mock.MatchedBy(func(e any) bool {
			evt, ok := e.(domain.PaymentStatusEvent)
			return ok && evt.Type == domain.PaymentEventFailed && evt.Status == domain.PaymentExpired
		})).Return(nil).Once()

		service := NewPaymentService(mockRepo, nil, mockNotifier, testWebhookToken)
		result, err := service.HandleInvoiceCallback(context.Background(), expiredPayload, testWebhookToken)

		assert.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, domain.PaymentExpired, result.PaymentStatus)

		time.Sleep(100 * time.Millisecond)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("unrecognized provider status lands as FAILED", func(t *testing.T) {
		oddPayload := []byte(`{"id": "` + TestInvoiceID + `", "external_id": "` + TestExternalID + `", "status": "SOMETHING_NEW"}`)

		mockRepo := new(mocks.MockOrderRepository)
		mockNotifier := new(mocks.MockNotifier)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		mockRepo.On("FindByExternalID", mock.Anything, TestExternalID).Return(order, nil)
		mockRepo.On("ApplyPaymentStatus", mock.Anything, TestExternalID, mock.MatchedBy(func(u repository.PaymentUpdate) bool {
			return u.Status == domain.PaymentFailed
		})).Return(true, nil)
		mockNotifier.On("NotifyRoom", mock.Anything, TestRoomID, mock.MatchedBy(func(e any) bool {
			evt, ok := e.(domain.PaymentStatusEvent)
			return ok && evt.Type == domain.PaymentEventFailed
		})).Return(nil).Once()

		service := NewPaymentService(mockRepo, nil, mockNotifier, testWebhookToken)
		result, err := service.HandleInvoiceCallback(context.Background(), oddPayload, testWebhookToken)

		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentFailed, result.PaymentStatus)

		time.Sleep(100 * time.Millisecond)
		mockNotifier.AssertExpectations(t)
	})
}

func TestPaymentService_GetPaymentStatus(t *testing.T) {
	t.Run("reads current state from the repository", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)

		paidAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		order := CreateMockOrder(domain.StatusAccepted, domain.PaymentPaid)
		order.PaymentMethod = "QRIS"
		order.PaidAt = &paidAt
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)

		service := NewPaymentService(mockRepo, nil, nil, testWebhookToken)
		result, err := service.GetPaymentStatus(context.Background(), TestOrderID)

		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, result.PaymentStatus)
		assert.Equal(t, "QRIS", result.PaymentMethod)
		assert.Equal(t, &paidAt, result.PaidAt)
	})

	t.Run("unknown order", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)

		service := NewPaymentService(mockRepo, nil, nil, testWebhookToken)
		result, err := service.GetPaymentStatus(context.Background(), TestOrderID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestPaymentService_MarkPaymentExpired(t *testing.T) {
	t.Run("expires an unpaid order and notifies the room", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockNotifier := new(mocks.MockNotifier)

		order := CreateMockOrder(domain.StatusPending, domain.PaymentPending)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)
		mockRepo.On("ApplyPaymentStatus", mock.Anything, TestExternalID, mock.MatchedBy(func(u repository.PaymentUpdate) bool {
			return u.Status == domain.PaymentExpired
		})).Return(true, nil)
		mockNotifier.On("NotifyRoom", mock.Anything, TestRoomID, mock.MatchedBy(func(e any) bool {
			evt, ok := e.(domain.PaymentStatusEvent)
			return ok && evt.Type == domain.PaymentEventFailed && evt.Status == domain.PaymentExpired
		})).Return(nil).Once()

		service := NewPaymentService(mockRepo, nil, mockNotifier, testWebhookToken)
		err := service.MarkPaymentExpired(context.Background(), TestOrderID)

		assert.NoError(t, err)

		time.Sleep(100 * time.Millisecond)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("paid order stays paid", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockNotifier := new(mocks.MockNotifier)

		order := CreateMockOrder(domain.StatusDelivered, domain.PaymentPaid)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(order, nil)
		mockRepo.On("ApplyPaymentStatus", mock.Anything, TestExternalID, mock.Anything).Return(false, nil)

		service := NewPaymentService(mockRepo, nil, mockNotifier, testWebhookToken)
		err := service.MarkPaymentExpired(context.Background(), TestOrderID)

		assert.NoError(t, err)

		time.Sleep(100 * time.Millisecond)
		mockNotifier.AssertNotCalled(t, "NotifyRoom", mock.Anything, mock.Anything, mock.Anything)
	})
}
