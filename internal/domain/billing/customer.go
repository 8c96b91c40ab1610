package billing

import (
	"time"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer represents a billable account holder.
//
// ClosingBalance is a credit ledger: it grows when a payment exceeds the
// customer's outstanding invoices and is drawn down when banked credit is
// later applied. The allocation engine is the only writer of this field.
type Customer struct {
	shared.TenantAggregateRoot
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Active         bool            `json:"active"`
}

// NewCustomer creates a new customer with a zero balance
func NewCustomer(tenantID uuid.UUID, name, phone, email string) (*Customer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 200 characters")
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Phone:               phone,
		Email:               email,
		ClosingBalance:      decimal.Zero,
		Active:              true,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))
	return customer, nil
}

// AdjustBalance applies a signed delta to the closing balance. A positive
// delta banks credit for the customer.
func (c *Customer) AdjustBalance(delta decimal.Decimal, reason string) {
	previous := c.ClosingBalance
	c.ClosingBalance = c.ClosingBalance.Add(delta)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerBalanceAdjustedEvent(c, previous, delta, reason))
}

// CreditBalance returns the credit the customer holds, zero if none
func (c *Customer) CreditBalance() decimal.Decimal {
	if c.ClosingBalance.IsPositive() {
		return c.ClosingBalance
	}
	return decimal.Zero
}

// Deactivate marks the customer inactive. Inactive customers keep their
// balance and history.
func (c *Customer) Deactivate() {
	if !c.Active {
		return
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
