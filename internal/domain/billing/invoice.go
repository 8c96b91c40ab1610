package billing

import (
	"fmt"
	"time"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the settlement status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "UNPAID" // Outstanding balance > 0
	InvoiceStatusPaid   InvoiceStatus = "PAID"   // Fully settled, outstanding = 0
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPaid
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanReceivePayment returns true if allocations can be applied in this status
func (s InvoiceStatus) CanReceivePayment() bool {
	return s == InvoiceStatusUnpaid
}

// Invoice represents an amount billed to a customer.
//
// InvoiceAmount is fixed at creation. AmountPaid only ever grows, and never
// past InvoiceAmount; the status is derived from the two.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Status        InvoiceStatus   `json:"status"`
	BillingPeriod string          `json:"billing_period"`
	DueDate       *time.Time      `json:"due_date"`
	SettledAt     *time.Time      `json:"settled_at"`
	Memo          string          `json:"memo"`
}

// NewInvoice creates a new unpaid invoice
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	customerID uuid.UUID,
	amount valueobject.Money,
	billingPeriod string,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	invoice := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		InvoiceAmount:       amount.Amount(),
		AmountPaid:          decimal.Zero,
		Status:              InvoiceStatusUnpaid,
		BillingPeriod:       billingPeriod,
		DueDate:             dueDate,
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))
	return invoice, nil
}

// Outstanding returns the amount still owed on the invoice
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.InvoiceAmount.Sub(i.AmountPaid)
}

// IsSettled returns true when the invoice is fully paid
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid
}

// ApplyAllocation records an allocation against the invoice.
//
// The amount must be positive and must not exceed the outstanding balance.
// Exceeding it means the caller computed an impossible plan, so the error is
// the fatal inconsistency code rather than a validation failure.
func (i *Invoice) ApplyAllocation(amount valueobject.Money) error {
	if !i.Status.CanReceivePayment() {
		return NewInconsistencyError(fmt.Sprintf("invoice %s is not open for payment", i.InvoiceNumber))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.Amount().GreaterThan(i.Outstanding()) {
		return NewInconsistencyError(fmt.Sprintf(
			"allocation %s exceeds outstanding %s on invoice %s",
			amount.Amount().String(), i.Outstanding().String(), i.InvoiceNumber,
		))
	}

	i.AmountPaid = i.AmountPaid.Add(amount.Amount())
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if i.Outstanding().IsZero() {
		now := time.Now()
		i.Status = InvoiceStatusPaid
		i.SettledAt = &now
		i.AddDomainEvent(NewInvoiceSettledEvent(i))
	}

	return nil
}
