package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/billflow/backend/internal/infrastructure/logger"
	"github.com/billflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocationService is the payment allocation engine. It turns an
// unreceipted payment into a receipt by applying it FIFO across the
// customer's unpaid invoices, banking any remainder as customer credit.
//
// Apply is the single entry point and runs entirely inside one database
// transaction: either every side effect lands or none do.
type AllocationService struct {
	txManager    billing.TransactionManager
	paymentRepo  billing.PaymentRepository
	customerRepo billing.CustomerRepository
	invoiceRepo  billing.InvoiceRepository
	receiptRepo  billing.ReceiptRepository
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	txManager billing.TransactionManager,
	paymentRepo billing.PaymentRepository,
	customerRepo billing.CustomerRepository,
	invoiceRepo billing.InvoiceRepository,
	receiptRepo billing.ReceiptRepository,
) *AllocationService {
	return &AllocationService{
		txManager:    txManager,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		receiptRepo:  receiptRepo,
	}
}

// AllocationRequest identifies the payment to allocate
type AllocationRequest struct {
	TenantID   uuid.UUID
	PaymentID  uuid.UUID
	CustomerID uuid.UUID
}

// AllocationLineResult is one receipt line in the result
type AllocationLineResult struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
}

// AllocationResult is the outcome of a successful Apply call.
// ReceiptID is nil when the customer had no unpaid invoices and the whole
// payment became credit.
type AllocationResult struct {
	PaymentID       uuid.UUID              `json:"payment_id"`
	CustomerID      uuid.UUID              `json:"customer_id"`
	ReceiptID       *uuid.UUID             `json:"receipt_id"`
	ReceiptNumber   string                 `json:"receipt_number,omitempty"`
	Lines           []AllocationLineResult `json:"lines"`
	TotalApplied    decimal.Decimal        `json:"total_applied"`
	Overpayment     decimal.Decimal        `json:"overpayment"`
	CustomerBalance decimal.Decimal        `json:"customer_balance"`
}

// Apply allocates a payment across the customer's unpaid invoices.
//
// The sequence inside the transaction:
//  1. load the payment and reject already-receipted ones
//  2. row-lock the customer, then the unpaid invoices (oldest first)
//  3. compute the FIFO plan and verify money conservation
//  4. apply each line to its invoice
//  5. issue a receipt when at least one invoice was touched
//  6. mark the payment receipted via compare-and-set
//  7. bank any overpayment remainder as customer credit
//
// Locking the customer row first serializes concurrent allocations for the
// same customer; the compare-and-set settles same-payment races.
func (s *AllocationService) Apply(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "apply")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPaymentID, req.PaymentID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
	)

	if req.TenantID == uuid.Nil || req.PaymentID == uuid.Nil || req.CustomerID == uuid.Nil {
		err := shared.NewDomainError("INVALID_INPUT", "Tenant, payment and customer IDs are required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *AllocationResult
	txErr := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.applyInTx(txCtx, req)
		return err
	})
	if txErr != nil {
		telemetry.RecordError(span, txErr)
		return nil, s.classifyError(txErr)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAppliedTotal, result.TotalApplied.String(),
		telemetry.SpanAttrOverpayment, result.Overpayment.String(),
		telemetry.SpanAttrLineCount, len(result.Lines),
	)
	logger.L(ctx).Info("payment allocated",
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("total_applied", result.TotalApplied.String()),
		zap.String("overpayment", result.Overpayment.String()),
		zap.Int("line_count", len(result.Lines)),
	)
	return result, nil
}

func (s *AllocationService) applyInTx(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
	payment, err := s.paymentRepo.FindByID(ctx, req.TenantID, req.PaymentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}
	// A payment id paired with the wrong customer is indistinguishable from
	// a missing payment to the caller.
	if payment.CustomerID != req.CustomerID {
		return nil, billing.ErrPaymentNotFound
	}
	if payment.Receipted {
		return nil, billing.ErrAlreadyProcessed
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	// Customer lock comes before the invoice reads so that concurrent
	// allocations for one customer see a consistent invoice set.
	customer, err := s.customerRepo.FindByIDForUpdate(ctx, req.TenantID, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("lock customer: %w", err)
	}

	invoices, err := s.invoiceRepo.FindUnpaidByCustomerForUpdate(ctx, req.TenantID, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("lock unpaid invoices: %w", err)
	}

	plan, err := billing.BuildAllocationPlan(payment.AmountMoney(), invoices)
	if err != nil {
		return nil, err
	}
	if !plan.TotalApplied.Add(plan.Overpayment).Equal(payment.Amount) {
		return nil, billing.NewInconsistencyError(fmt.Sprintf(
			"allocation plan lost money: applied %s + overpayment %s != payment %s",
			plan.TotalApplied.String(), plan.Overpayment.String(), payment.Amount.String(),
		))
	}

	invoiceByID := make(map[uuid.UUID]*billing.Invoice, len(invoices))
	for _, invoice := range invoices {
		invoiceByID[invoice.ID] = invoice
	}

	lines := make([]AllocationLineResult, 0, len(plan.Lines))
	receiptLines := make(billing.ReceiptLineItems, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		invoice, ok := invoiceByID[line.InvoiceID]
		if !ok {
			return nil, billing.NewInconsistencyError("allocation plan references an unknown invoice")
		}
		if err := invoice.ApplyAllocation(valueobject.NewMoneyKES(line.Amount)); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return nil, fmt.Errorf("save invoice %s: %w", invoice.InvoiceNumber, err)
		}

		lines = append(lines, AllocationLineResult{
			InvoiceID:     line.InvoiceID,
			InvoiceNumber: line.InvoiceNumber,
			AppliedAmount: line.Amount,
		})
		receiptLines = append(receiptLines, billing.ReceiptLineItem{
			InvoiceID:     line.InvoiceID,
			InvoiceNumber: line.InvoiceNumber,
			AppliedAmount: line.Amount,
		})
	}

	var receiptID *uuid.UUID
	var receiptNumber string
	if plan.HasLines() {
		receiptNumber, err = s.receiptRepo.GenerateReceiptNumber(ctx, req.TenantID)
		if err != nil {
			return nil, fmt.Errorf("generate receipt number: %w", err)
		}
		receipt, err := billing.NewReceipt(
			req.TenantID, receiptNumber, customer.ID, payment.ID, payment.Mode, receiptLines,
		)
		if err != nil {
			return nil, err
		}
		if err := s.receiptRepo.Save(ctx, receipt); err != nil {
			return nil, fmt.Errorf("save receipt: %w", err)
		}
		receiptID = &receipt.ID
	}

	if err := payment.MarkReceipted(receiptID); err != nil {
		return nil, err
	}
	// The compare-and-set is the authoritative idempotency guard: it fails
	// when another transaction receipted this payment first.
	if err := s.paymentRepo.MarkReceipted(ctx, payment); err != nil {
		return nil, err
	}

	if plan.Overpayment.IsPositive() {
		customer.AdjustBalance(plan.Overpayment, fmt.Sprintf("overpayment on payment %s", payment.PaymentReference))
		if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
			return nil, fmt.Errorf("save customer balance: %w", err)
		}
	}

	return &AllocationResult{
		PaymentID:       payment.ID,
		CustomerID:      customer.ID,
		ReceiptID:       receiptID,
		ReceiptNumber:   receiptNumber,
		Lines:           lines,
		TotalApplied:    plan.TotalApplied,
		Overpayment:     plan.Overpayment,
		CustomerBalance: customer.ClosingBalance,
	}, nil
}

// applyErrorCodes is the closed set of codes Apply surfaces to callers.
var applyErrorCodes = map[string]bool{
	billing.ErrCodePaymentNotFound:       true,
	billing.ErrCodeCustomerNotFound:      true,
	billing.ErrCodeAlreadyProcessed:      true,
	billing.ErrCodeInternalInconsistency: true,
	billing.ErrCodeStoreUnavailable:      true,
}

// classifyError keeps taxonomy errors as-is and folds everything else into
// the retryable store-unavailable code. That covers driver errors and also
// domain errors with codes outside the taxonomy, such as the repositories'
// optimistic-lock sentinel: the transaction rolled back, so retrying the
// whole call is safe. Inconsistency errors pass through untouched so callers
// never retry them.
func (s *AllocationService) classifyError(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && applyErrorCodes[domainErr.Code] {
		return err
	}
	return billing.NewStoreUnavailableError(fmt.Sprintf("allocation aborted: %v", err))
}
