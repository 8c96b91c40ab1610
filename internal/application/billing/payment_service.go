package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/billflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService records incoming payments and answers payment queries.
// Allocation of a recorded payment is AllocationService's job.
type PaymentService struct {
	paymentRepo  billing.PaymentRepository
	customerRepo billing.CustomerRepository
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo billing.PaymentRepository, customerRepo billing.CustomerRepository) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
	}
}

// RecordPaymentRequest carries the fields reported by a payment gateway
type RecordPaymentRequest struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	Reference  string
	Amount     decimal.Decimal
	Mode       billing.PaymentMode
	ReceivedAt time.Time
	Memo       string
}

// RecordPayment stores a gateway notification as an unreceipted payment.
// Recording the same gateway reference twice returns the existing payment.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*billing.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrPaymentMode, string(req.Mode),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if _, err := s.customerRepo.FindByID(ctx, req.TenantID, req.CustomerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			telemetry.RecordError(span, billing.ErrCustomerNotFound)
			return nil, billing.ErrCustomerNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load customer: %w", err)
	}

	// Gateways redeliver notifications; the reference makes the record
	// idempotent.
	existing, err := s.paymentRepo.FindByReference(ctx, req.TenantID, req.Reference)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("check payment reference: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	payment, err := billing.NewPayment(
		req.TenantID, req.Reference, req.CustomerID,
		valueobject.NewMoneyKES(req.Amount), req.Mode, req.ReceivedAt,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payment.Memo = req.Memo

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("save payment: %w", err)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, payment.ID.String())
	return payment, nil
}

// GetPayment returns a single payment
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}
	return payment, nil
}

// ListPayments lists payments for a tenant with filtering
func (s *PaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (*shared.Paginated[billing.Payment], error) {
	page, err := s.paymentRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return page, nil
}
