package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReceiptService answers receipt queries. Receipts are only ever created by
// the allocation engine.
type ReceiptService struct {
	receiptRepo billing.ReceiptRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(receiptRepo billing.ReceiptRepository) *ReceiptService {
	return &ReceiptService{receiptRepo: receiptRepo}
}

// GetReceipt returns a single receipt with its line items
func (s *ReceiptService) GetReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) (*billing.Receipt, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, tenantID, receiptID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load receipt: %w", err)
	}
	return receipt, nil
}

// GetReceiptForPayment returns the receipt issued for a payment, if any
func (s *ReceiptService) GetReceiptForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Receipt, error) {
	receipt, err := s.receiptRepo.FindByPaymentID(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load receipt for payment: %w", err)
	}
	return receipt, nil
}

// ListReceipts lists receipts for a tenant with filtering
func (s *ReceiptService) ListReceipts(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptFilter) (*shared.Paginated[billing.Receipt], error) {
	page, err := s.receiptRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return page, nil
}
