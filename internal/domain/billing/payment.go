package billing

import (
	"time"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode represents the channel a payment arrived through
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "CASH"
	PaymentModeMpesa        PaymentMode = "MPESA"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentModeCheque       PaymentMode = "CHEQUE"
	PaymentModeCard         PaymentMode = "CARD"
	PaymentModeOther        PaymentMode = "OTHER"
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeMpesa, PaymentModeBankTransfer,
		PaymentModeCheque, PaymentModeCard, PaymentModeOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMode
func (m PaymentMode) String() string {
	return string(m)
}

// Payment represents money received from a customer, before and after it has
// been turned into a receipt.
//
// Receipted is the idempotency guard for the allocation engine: a payment is
// allocated exactly once, and once receipted it never changes again.
type Payment struct {
	shared.TenantAggregateRoot
	PaymentReference string          `json:"payment_reference"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	Amount           decimal.Decimal `json:"amount"`
	Mode             PaymentMode     `json:"mode"`
	Receipted        bool            `json:"receipted"`
	ReceiptID        *uuid.UUID      `json:"receipt_id"`
	ReceivedAt       time.Time       `json:"received_at"`
	Memo             string          `json:"memo"`
}

// NewPayment creates a new unreceipted payment
func NewPayment(
	tenantID uuid.UUID,
	paymentReference string,
	customerID uuid.UUID,
	amount valueobject.Money,
	mode PaymentMode,
	receivedAt time.Time,
) (*Payment, error) {
	if paymentReference == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_REFERENCE", "Payment reference cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_MODE", "Payment mode is not valid")
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	payment := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentReference:    paymentReference,
		CustomerID:          customerID,
		Amount:              amount.Amount(),
		Mode:                mode,
		Receipted:           false,
		ReceivedAt:          receivedAt,
	}

	payment.AddDomainEvent(NewPaymentRecordedEvent(payment))
	return payment, nil
}

// AmountMoney returns the payment amount as a Money value object
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.Amount)
}

// MarkReceipted transitions the payment into its terminal state. receiptID is
// nil when the payment was banked entirely as customer credit.
func (p *Payment) MarkReceipted(receiptID *uuid.UUID) error {
	if p.Receipted {
		return ErrAlreadyProcessed
	}
	p.Receipted = true
	p.ReceiptID = receiptID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentReceiptedEvent(p))
	return nil
}

// Validate checks stored payment state before it enters the allocation engine
func (p *Payment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return NewInconsistencyError("stored payment amount is not positive")
	}
	if p.CustomerID == uuid.Nil {
		return NewInconsistencyError("stored payment has no customer")
	}
	return nil
}
