package infra

import (
	"context"

	"roomservice/internal/infra/xendit"
)

type InvoiceClientInterface interface {
	CreateInvoice(ctx context.Context, req xendit.CreateInvoiceRequest) (*xendit.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*xendit.Invoice, error)
	ExpireInvoice(ctx context.Context, invoiceID string) (*xendit.Invoice, error)
}

var _ InvoiceClientInterface = (*xendit.Client)(nil)

type NotifierInterface interface {
	NotifyRoom(ctx context.Context, roomID string, event any) error
}

var _ NotifierInterface = (*RoomNotifier)(nil)
