package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService handles invoice creation and queries
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo billing.CustomerRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, customerRepo billing.CustomerRepository) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
	}
}

// CreateInvoiceRequest carries the fields for billing a customer
type CreateInvoiceRequest struct {
	TenantID      uuid.UUID
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	BillingPeriod string
	DueDate       *time.Time
	Memo          string
}

// CreateInvoice bills a customer. The invoice number is generated per tenant.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	if _, err := s.customerRepo.FindByID(ctx, req.TenantID, req.CustomerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}

	number, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}

	invoice, err := billing.NewInvoice(
		req.TenantID, number, req.CustomerID,
		valueobject.NewMoneyKES(req.Amount), req.BillingPeriod, req.DueDate,
	)
	if err != nil {
		return nil, err
	}
	invoice.Memo = req.Memo

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}
	return invoice, nil
}

// GetInvoice returns a single invoice
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices lists invoices for a tenant with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (*shared.Paginated[billing.Invoice], error) {
	page, err := s.invoiceRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return page, nil
}

// ListUnpaidInvoices returns a customer's unpaid invoices oldest first, the
// same order the allocation engine consumes them in
func (s *InvoiceService) ListUnpaidInvoices(ctx context.Context, tenantID, customerID uuid.UUID) ([]*billing.Invoice, error) {
	invoices, err := s.invoiceRepo.FindUnpaidByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid invoices: %w", err)
	}
	return invoices, nil
}
