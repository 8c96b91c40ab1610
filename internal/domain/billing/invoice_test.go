package billing

import (
	"testing"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoice(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()
	amount := valueobject.NewMoneyKES(decimal.NewFromInt(500))

	t.Run("creates an unpaid invoice", func(t *testing.T) {
		invoice, err := NewInvoice(tenantID, "INV-20260801-00001", customerID, amount, "2026-08", nil)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusUnpaid, invoice.Status)
		assert.True(t, invoice.AmountPaid.IsZero())
		assert.True(t, invoice.Outstanding().Equal(decimal.NewFromInt(500)))
		assert.Len(t, invoice.GetDomainEvents(), 1)
	})

	t.Run("rejects empty invoice number", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "", customerID, amount, "2026-08", nil)
		assert.Error(t, err)
	})

	t.Run("rejects nil customer", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "INV-1", uuid.Nil, amount, "2026-08", nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "INV-1", customerID, valueobject.ZeroKES(), "2026-08", nil)
		assert.Error(t, err)
	})
}

func TestInvoiceApplyAllocation(t *testing.T) {
	newOpenInvoice := func(t *testing.T, amount int64) *Invoice {
		t.Helper()
		invoice, err := NewInvoice(
			uuid.New(), "INV-1", uuid.New(),
			valueobject.NewMoneyKES(decimal.NewFromInt(amount)), "2026-08", nil,
		)
		require.NoError(t, err)
		return invoice
	}

	t.Run("partial allocation leaves the invoice unpaid", func(t *testing.T) {
		invoice := newOpenInvoice(t, 100)
		require.NoError(t, invoice.ApplyAllocation(valueobject.NewMoneyKES(decimal.NewFromInt(60))))

		assert.Equal(t, InvoiceStatusUnpaid, invoice.Status)
		assert.True(t, invoice.Outstanding().Equal(decimal.NewFromInt(40)))
		assert.Nil(t, invoice.SettledAt)
	})

	t.Run("exact allocation settles the invoice", func(t *testing.T) {
		invoice := newOpenInvoice(t, 100)
		require.NoError(t, invoice.ApplyAllocation(valueobject.NewMoneyKES(decimal.NewFromInt(100))))

		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
		assert.True(t, invoice.Outstanding().IsZero())
		assert.NotNil(t, invoice.SettledAt)
	})

	t.Run("overshooting the outstanding balance is a fatal inconsistency", func(t *testing.T) {
		invoice := newOpenInvoice(t, 100)
		err := invoice.ApplyAllocation(valueobject.NewMoneyKES(decimal.NewFromInt(101)))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInternalInconsistency, domainErr.Code)
		// The invoice must be left untouched.
		assert.True(t, invoice.AmountPaid.IsZero())
	})

	t.Run("settled invoices accept no further allocations", func(t *testing.T) {
		invoice := newOpenInvoice(t, 50)
		require.NoError(t, invoice.ApplyAllocation(valueobject.NewMoneyKES(decimal.NewFromInt(50))))

		err := invoice.ApplyAllocation(valueobject.NewMoneyKES(decimal.NewFromInt(1)))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInternalInconsistency, domainErr.Code)
	})

	t.Run("rejects non-positive allocation", func(t *testing.T) {
		invoice := newOpenInvoice(t, 50)
		assert.Error(t, invoice.ApplyAllocation(valueobject.ZeroKES()))
	})
}
