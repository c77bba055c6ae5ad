package xendit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"roomservice/internal/domain"
)

const DefaultBaseURL = "https://api.xendit.co"

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if req.Description == "" {
		req.Description = "Room Service - Food Order"
	}
	if req.InvoiceDuration == 0 {
		req.InvoiceDuration = 3600
	}
	if req.Currency == "" {
		req.Currency = "IDR"
	}
	return c.do(ctx, http.MethodPost, "/v2/invoices", req)
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	return c.do(ctx, http.MethodGet, "/v2/invoices/"+url.PathEscape(invoiceID), nil)
}

// ExpireInvoice closes a hosted invoice early, used when staff reject an
// order that still has an unpaid invoice open.
func (c *Client) ExpireInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	return c.do(ctx, http.MethodPost, "/v2/invoices/"+url.PathEscape(invoiceID)+"/expire!", nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*Invoice, error) {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.ErrorCode != "" {
			return nil, fmt.Errorf("xendit %s: %s", apiErr.ErrorCode, apiErr.Message)
		}
		return nil, fmt.Errorf("xendit returned status %d", resp.StatusCode)
	}

	var invoice Invoice
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MapInvoiceStatus normalizes the provider vocabulary into the internal
// payment status. Unrecognized values become FAILED rather than being
// dropped, and are logged for diagnostics.
func MapInvoiceStatus(status InvoiceStatus) domain.PaymentStatus {
	switch status {
	case InvoicePaid, InvoiceSettled:
		return domain.PaymentPaid
	case InvoiceExpired:
		return domain.PaymentExpired
	case InvoicePending:
		return domain.PaymentPending
	default:
		log.Printf("unrecognized invoice status %q, treating as FAILED", status)
		return domain.PaymentFailed
	}
}
