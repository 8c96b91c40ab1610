package billing

import (
	"context"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerFilter defines filtering options for customer queries
type CustomerFilter struct {
	shared.Filter
	Search string
	Active *bool
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByIDForUpdate finds a customer by ID, row-locked for the duration
	// of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindAll lists customers for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) (*shared.Paginated[Customer], error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, customer *Customer) error
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindAll lists invoices for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (*shared.Paginated[Invoice], error)

	// FindUnpaidByCustomer returns a customer's unpaid invoices ordered
	// oldest first (creation time, invoice number as tiebreaker)
	FindUnpaidByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Invoice, error)

	// FindUnpaidByCustomerForUpdate is FindUnpaidByCustomer with the rows
	// locked for the duration of the surrounding transaction
	FindUnpaidByCustomerForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// GenerateInvoiceNumber produces the next invoice number for a tenant
	GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Receipted  *bool
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByReference finds a payment by its external gateway reference
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Payment, error)

	// FindAll lists payments for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (*shared.Paginated[Payment], error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// MarkReceipted flips the receipted flag for an unreceipted payment as a
	// compare-and-set. Returns ErrAlreadyProcessed when the payment was
	// receipted by a concurrent caller.
	MarkReceipted(ctx context.Context, payment *Payment) error
}

// ReceiptFilter defines filtering options for receipt queries
type ReceiptFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID finds a receipt by ID for a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error)

	// FindByPaymentID finds the receipt issued for a payment, if any
	FindByPaymentID(ctx context.Context, tenantID, paymentID uuid.UUID) (*Receipt, error)

	// FindAll lists receipts for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ReceiptFilter) (*shared.Paginated[Receipt], error)

	// Save persists a receipt. Receipts are immutable; Save is insert-only.
	Save(ctx context.Context, receipt *Receipt) error

	// GenerateReceiptNumber produces the next receipt number for a tenant
	GenerateReceiptNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// TransactionManager runs a function inside a single database transaction.
// Repository calls made with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
