package xendit

type PaymentMethod string

const (
	MethodQRIS           PaymentMethod = "QRIS"
	MethodVirtualAccount PaymentMethod = "VIRTUAL_ACCOUNT"
	MethodEwallet        PaymentMethod = "EWALLET"
	MethodRetailOutlet   PaymentMethod = "RETAIL_OUTLET"
	MethodCreditCard     PaymentMethod = "CREDIT_CARD"
)

// InvoiceStatus is the provider's own vocabulary. PAID and SETTLED both
// mean the money arrived; anything outside this set maps to FAILED.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "PENDING"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoiceSettled InvoiceStatus = "SETTLED"
	InvoiceExpired InvoiceStatus = "EXPIRED"
)

type DisplayItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type Customer struct {
	MobileNumber string `json:"mobile_number,omitempty"`
}

type CreateInvoiceRequest struct {
	ExternalID      string          `json:"external_id"`
	Amount          int64           `json:"amount"`
	Description     string          `json:"description"`
	InvoiceDuration int             `json:"invoice_duration,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	PaymentMethods  []PaymentMethod `json:"payment_methods,omitempty"`
	Customer        *Customer       `json:"customer,omitempty"`
	Items           []DisplayItem   `json:"items,omitempty"`
}

type Invoice struct {
	ID             string        `json:"id"`
	ExternalID     string        `json:"external_id"`
	Status         InvoiceStatus `json:"status"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	InvoiceURL     string        `json:"invoice_url"`
	ExpiryDate     string        `json:"expiry_date"`
	PaidAmount     int64         `json:"paid_amount,omitempty"`
	PaidAt         string        `json:"paid_at,omitempty"`
	PaymentMethod  string        `json:"payment_method,omitempty"`
	PaymentChannel string        `json:"payment_channel,omitempty"`
}

// InvoiceCallback is the provider-shaped webhook body for invoice events.
type InvoiceCallback struct {
	ID             string        `json:"id"`
	ExternalID     string        `json:"external_id"`
	Status         InvoiceStatus `json:"status"`
	Amount         int64         `json:"amount"`
	PaidAmount     int64         `json:"paid_amount,omitempty"`
	PaidAt         string        `json:"paid_at,omitempty"`
	PaymentMethod  string        `json:"payment_method,omitempty"`
	PaymentChannel string        `json:"payment_channel,omitempty"`
}

type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}
