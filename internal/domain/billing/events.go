package billing

import (
	"time"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerCreatedEvent is raised when a new customer is registered
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
}

// EventType returns the event type name
func (e *CustomerCreatedEvent) EventType() string {
	return "CustomerCreated"
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CustomerCreated", "Customer", c.ID, c.TenantID),
		CustomerID:      c.ID,
		Name:            c.Name,
	}
}

// CustomerBalanceAdjustedEvent is raised when the allocation engine moves a
// customer's closing balance
type CustomerBalanceAdjustedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Delta           decimal.Decimal `json:"delta"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Reason          string          `json:"reason"`
}

// EventType returns the event type name
func (e *CustomerBalanceAdjustedEvent) EventType() string {
	return "CustomerBalanceAdjusted"
}

// NewCustomerBalanceAdjustedEvent creates a new CustomerBalanceAdjustedEvent
func NewCustomerBalanceAdjustedEvent(c *Customer, previous, delta decimal.Decimal, reason string) *CustomerBalanceAdjustedEvent {
	return &CustomerBalanceAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CustomerBalanceAdjusted", "Customer", c.ID, c.TenantID),
		CustomerID:      c.ID,
		PreviousBalance: previous,
		Delta:           delta,
		NewBalance:      c.ClosingBalance,
		Reason:          reason,
	}
}

// InvoiceCreatedEvent is raised when a new invoice is billed
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	BillingPeriod string          `json:"billing_period"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", i.ID, i.TenantID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.InvoiceNumber,
		CustomerID:      i.CustomerID,
		InvoiceAmount:   i.InvoiceAmount,
		BillingPeriod:   i.BillingPeriod,
	}
}

// InvoiceSettledEvent is raised when an invoice becomes fully paid
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	SettledAt     time.Time       `json:"settled_at"`
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return "InvoiceSettled"
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(i *Invoice) *InvoiceSettledEvent {
	settledAt := time.Now()
	if i.SettledAt != nil {
		settledAt = *i.SettledAt
	}
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSettled", "Invoice", i.ID, i.TenantID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.InvoiceNumber,
		CustomerID:      i.CustomerID,
		InvoiceAmount:   i.InvoiceAmount,
		SettledAt:       settledAt,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded from a gateway
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID        uuid.UUID       `json:"payment_id"`
	PaymentReference string          `json:"payment_reference"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	Amount           decimal.Decimal `json:"amount"`
	Mode             PaymentMode     `json:"mode"`
	ReceivedAt       time.Time       `json:"received_at"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID, p.TenantID),
		PaymentID:        p.ID,
		PaymentReference: p.PaymentReference,
		CustomerID:       p.CustomerID,
		Amount:           p.Amount,
		Mode:             p.Mode,
		ReceivedAt:       p.ReceivedAt,
	}
}

// PaymentReceiptedEvent is raised when the allocation engine consumes a payment
type PaymentReceiptedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	ReceiptID  *uuid.UUID      `json:"receipt_id"`
}

// EventType returns the event type name
func (e *PaymentReceiptedEvent) EventType() string {
	return "PaymentReceipted"
}

// NewPaymentReceiptedEvent creates a new PaymentReceiptedEvent
func NewPaymentReceiptedEvent(p *Payment) *PaymentReceiptedEvent {
	return &PaymentReceiptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReceipted", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		ReceiptID:       p.ReceiptID,
	}
}

// ReceiptIssuedEvent is raised when a receipt is created for a payment
type ReceiptIssuedEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	LineCount     int             `json:"line_count"`
}

// EventType returns the event type name
func (e *ReceiptIssuedEvent) EventType() string {
	return "ReceiptIssued"
}

// NewReceiptIssuedEvent creates a new ReceiptIssuedEvent
func NewReceiptIssuedEvent(r *Receipt) *ReceiptIssuedEvent {
	return &ReceiptIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptIssued", "Receipt", r.ID, r.TenantID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		CustomerID:      r.CustomerID,
		PaymentID:       r.PaymentID,
		TotalAmount:     r.TotalAmount,
		LineCount:       len(r.LineItems),
	}
}
