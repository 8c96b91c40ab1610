package billing

import (
	"testing"
	"time"

	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, customerID uuid.UUID, number string, amount int64, createdAt time.Time) *Invoice {
	t.Helper()
	invoice, err := NewInvoice(
		uuid.New(),
		number,
		customerID,
		valueobject.NewMoneyKES(decimal.NewFromInt(amount)),
		"2026-08",
		nil,
	)
	require.NoError(t, err)
	invoice.CreatedAt = createdAt
	return invoice
}

func TestBuildAllocationPlan(t *testing.T) {
	customerID := uuid.New()
	now := time.Now()

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := BuildAllocationPlan(valueobject.NewMoneyKES(decimal.Zero), nil)
		assert.Error(t, err)

		_, err = BuildAllocationPlan(valueobject.NewMoneyKES(decimal.NewFromInt(-50)), nil)
		assert.Error(t, err)
	})

	t.Run("no invoices leaves the full amount as overpayment", func(t *testing.T) {
		plan, err := BuildAllocationPlan(valueobject.NewMoneyKES(decimal.NewFromInt(75)), nil)
		require.NoError(t, err)
		assert.False(t, plan.HasLines())
		assert.True(t, plan.TotalApplied.IsZero())
		assert.True(t, plan.Overpayment.Equal(decimal.NewFromInt(75)))
	})

	t.Run("oldest invoice is settled first, newer gets the remainder", func(t *testing.T) {
		older := newTestInvoice(t, customerID, "INV-001", 100, now.Add(-48*time.Hour))
		newer := newTestInvoice(t, customerID, "INV-002", 50, now.Add(-24*time.Hour))

		// Deliberately pass the newer invoice first; the plan must reorder.
		plan, err := BuildAllocationPlan(valueobject.NewMoneyKES(decimal.NewFromInt(120)), []*Invoice{newer, older})
		require.NoError(t, err)

		require.Len(t, plan.Lines, 2)
		assert.Equal(t, older.ID, plan.Lines[0].InvoiceID)
		assert.True(t, plan.Lines[0].Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, newer.ID, plan.Lines[1].InvoiceID)
		assert.True(t, plan.Lines[1].Amount.Equal(decimal.NewFromInt(20)))

		assert.True(t, plan.TotalApplied.Equal(decimal.NewFromInt(120)))
		assert.True(t, plan.Overpayment.IsZero())
	})

	t.Run("overpayment is the exact residual", func(t *testing.T) {
		invoice := newTestInvoice(t, customerID, "INV-003", 40, now.Add(-time.Hour))

		plan, err := BuildAllocationPlan(valueobject.NewMoneyKES(decimal.NewFromInt(100)), []*Invoice{invoice})
		require.NoError(t, err)

		require.Len(t, plan.Lines, 1)
		assert.True(t, plan.Lines[0].Amount.Equal(decimal.NewFromInt(40)))
		assert.True(t, plan.TotalApplied.Equal(decimal.NewFromInt(40)))
		assert.True(t, plan.Overpayment.Equal(decimal.NewFromInt(60)))
	})

	t.Run("payment smaller than the oldest invoice stays on it", func(t *testing.T) {
		first := newTestInvoice(t, customerID, "INV-004", 200, now.Add(-72*time.Hour))
		second := newTestInvoice(t, customerID, "INV-005", 80, now.Add(-36*time.Hour))

		plan, err := BuildAllocationPlan(valueobject.NewMoneyKES(decimal.NewFromInt(150)), []*Invoice{first, second})
		require.NoError(t, err)

		require.Len(t, plan.Lines, 1)
		assert.Equal(t, first.ID, plan.Lines[0].InvoiceID)
		assert.True(t, plan.Lines[0].Amount.Equal(decimal.NewFromInt(150)))
		assert.True(t, plan.Overpayment.IsZero())
	})

	t.Run("settled invoices are skipped", func(t *testing.T) {
		settled := newTestInvoice(t, customerID, "INV-006", 30, now.Add(-96*time.Hour))
		require.NoError(t, settled.ApplyAllocation(valueobject.NewMoneyKES(decimal.NewFromInt(30))))
		open := newTestInvoice(t, customerID, "INV-007", 50, now.Add(-24*time.Hour))

		plan, err := BuildAllocationPlan(valueobject.NewMoneyKES(decimal.NewFromInt(50)), []*Invoice{settled, open})
		require.NoError(t, err)

		require.Len(t, plan.Lines, 1)
		assert.Equal(t, open.ID, plan.Lines[0].InvoiceID)
	})

	t.Run("equal timestamps fall back to invoice number order", func(t *testing.T) {
		ts := now.Add(-12 * time.Hour)
		a := newTestInvoice(t, customerID, "INV-010", 10, ts)
		b := newTestInvoice(t, customerID, "INV-011", 10, ts)

		plan, err := BuildAllocationPlan(valueobject.NewMoneyKES(decimal.NewFromInt(15)), []*Invoice{b, a})
		require.NoError(t, err)

		require.Len(t, plan.Lines, 2)
		assert.Equal(t, "INV-010", plan.Lines[0].InvoiceNumber)
		assert.Equal(t, "INV-011", plan.Lines[1].InvoiceNumber)
	})

	t.Run("conservation holds for fractional amounts", func(t *testing.T) {
		inv1 := newTestInvoice(t, customerID, "INV-020", 33, now.Add(-3*time.Hour))
		inv2 := newTestInvoice(t, customerID, "INV-021", 67, now.Add(-2*time.Hour))

		amount := decimal.RequireFromString("75.45")
		plan, err := BuildAllocationPlan(valueobject.NewMoneyKES(amount), []*Invoice{inv1, inv2})
		require.NoError(t, err)

		assert.True(t, plan.TotalApplied.Add(plan.Overpayment).Equal(amount))
	})
}
