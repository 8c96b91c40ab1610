package billing

import (
	"sort"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationLine is one step of an allocation plan: apply Amount to the
// invoice identified by InvoiceID.
type AllocationLine struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Amount        decimal.Decimal
}

// AllocationPlan is the pure outcome of running a payment across a set of
// open invoices. Lines preserve visiting order (oldest invoice first).
//
// TotalApplied plus Overpayment always equals the payment amount the plan
// was built from.
type AllocationPlan struct {
	Lines        []AllocationLine
	TotalApplied decimal.Decimal
	Overpayment  decimal.Decimal
}

// HasLines returns true when at least one invoice receives money
func (p *AllocationPlan) HasLines() bool {
	return len(p.Lines) > 0
}

// HasOverpayment returns true when part of the payment is left over as credit
func (p *AllocationPlan) HasOverpayment() bool {
	return p.Overpayment.IsPositive()
}

// BuildAllocationPlan computes a FIFO allocation of amount across the given
// invoices. Invoices are visited oldest first (by creation time, invoice
// number as tiebreaker); each receives min(outstanding, remaining) until the
// amount runs out. Settled invoices are skipped.
//
// The computation is pure: no invoice is mutated.
func BuildAllocationPlan(amount valueobject.Money, invoices []*Invoice) (*AllocationPlan, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}

	ordered := make([]*Invoice, len(invoices))
	copy(ordered, invoices)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].InvoiceNumber < ordered[j].InvoiceNumber
	})

	lines := make([]AllocationLine, 0, len(ordered))
	remaining := amount.Amount()
	totalApplied := decimal.Zero

	for _, invoice := range ordered {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if !invoice.Status.CanReceivePayment() {
			continue
		}
		outstanding := invoice.Outstanding()
		if outstanding.LessThanOrEqual(decimal.Zero) {
			continue
		}

		applied := decimal.Min(remaining, outstanding)
		lines = append(lines, AllocationLine{
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			Amount:        applied,
		})

		totalApplied = totalApplied.Add(applied)
		remaining = remaining.Sub(applied)
	}

	return &AllocationPlan{
		Lines:        lines,
		TotalApplied: totalApplied,
		Overpayment:  remaining,
	}, nil
}
