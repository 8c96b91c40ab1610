package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLineItem records how much of a receipt was applied to one invoice.
// It is a value object within the Receipt aggregate, stored as JSONB, and the
// slice order is the order the engine visited the invoices.
type ReceiptLineItem struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
}

// ReceiptLineItems implements GORM Scanner/Valuer for JSONB storage
type ReceiptLineItems []ReceiptLineItem

// Value implements driver.Valuer for JSONB storage
func (r ReceiptLineItems) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB retrieval
func (r *ReceiptLineItems) Scan(value interface{}) error {
	if value == nil {
		*r = ReceiptLineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ReceiptLineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*r = ReceiptLineItems{}
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// Total sums the applied amounts across all line items
func (r ReceiptLineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r {
		total = total.Add(item.AppliedAmount)
	}
	return total
}

// Receipt is the immutable record produced when a payment is allocated to
// invoices. A receipt always carries at least one line item; a payment that
// touched no invoice produces no receipt.
type Receipt struct {
	shared.TenantAggregateRoot
	ReceiptNumber string           `json:"receipt_number"`
	CustomerID    uuid.UUID        `json:"customer_id"`
	PaymentID     uuid.UUID        `json:"payment_id"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	Mode          PaymentMode      `json:"mode"`
	LineItems     ReceiptLineItems `json:"line_items"`
	IssuedAt      time.Time        `json:"issued_at"`
}

// NewReceipt creates a receipt for an allocated payment.
//
// TotalAmount must equal the sum of the line items; a mismatch means the
// caller built a plan that lost money, which is the fatal inconsistency case.
func NewReceipt(
	tenantID uuid.UUID,
	receiptNumber string,
	customerID uuid.UUID,
	paymentID uuid.UUID,
	mode PaymentMode,
	lineItems ReceiptLineItems,
) (*Receipt, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if len(lineItems) == 0 {
		return nil, NewInconsistencyError("receipt must carry at least one line item")
	}
	for _, item := range lineItems {
		if item.InvoiceID == uuid.Nil {
			return nil, NewInconsistencyError("receipt line item references no invoice")
		}
		if item.AppliedAmount.LessThanOrEqual(decimal.Zero) {
			return nil, NewInconsistencyError("receipt line item amount is not positive")
		}
	}

	receipt := &Receipt{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReceiptNumber:       receiptNumber,
		CustomerID:          customerID,
		PaymentID:           paymentID,
		TotalAmount:         lineItems.Total(),
		Mode:                mode,
		LineItems:           lineItems,
		IssuedAt:            time.Now(),
	}

	receipt.AddDomainEvent(NewReceiptIssuedEvent(receipt))
	return receipt, nil
}
