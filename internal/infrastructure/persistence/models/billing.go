package models

import (
	"time"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for billing customers
type CustomerModel struct {
	TenantAggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	Phone          string          `gorm:"type:varchar(50)"`
	Email          string          `gorm:"type:varchar(200)"`
	ClosingBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Active         bool            `gorm:"not null;default:true"`
}

// TableName specifies the table name for CustomerModel
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain customer
func (m *CustomerModel) ToDomain() *billing.Customer {
	customer := &billing.Customer{
		Name:           m.Name,
		Phone:          m.Phone,
		Email:          m.Email,
		ClosingBalance: m.ClosingBalance,
		Active:         m.Active,
	}
	m.PopulateTenantAggregateRoot(&customer.TenantAggregateRoot)
	return customer
}

// CustomerModelFromDomain converts a domain customer to its persistence model
func CustomerModelFromDomain(c *billing.Customer) *CustomerModel {
	model := &CustomerModel{
		Name:           c.Name,
		Phone:          c.Phone,
		Email:          c.Email,
		ClosingBalance: c.ClosingBalance,
		Active:         c.Active,
	}
	model.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return model
}

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number,composite:tenant_id"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceAmount decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
	BillingPeriod string          `gorm:"type:varchar(20)"`
	DueDate       *time.Time
	SettledAt     *time.Time
	Memo          string `gorm:"type:text"`
}

// TableName specifies the table name for InvoiceModel
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	invoice := &billing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		InvoiceAmount: m.InvoiceAmount,
		AmountPaid:    m.AmountPaid,
		Status:        billing.InvoiceStatus(m.Status),
		BillingPeriod: m.BillingPeriod,
		DueDate:       m.DueDate,
		SettledAt:     m.SettledAt,
		Memo:          m.Memo,
	}
	m.PopulateTenantAggregateRoot(&invoice.TenantAggregateRoot)
	return invoice
}

// InvoiceModelFromDomain converts a domain invoice to its persistence model
func InvoiceModelFromDomain(i *billing.Invoice) *InvoiceModel {
	model := &InvoiceModel{
		InvoiceNumber: i.InvoiceNumber,
		CustomerID:    i.CustomerID,
		InvoiceAmount: i.InvoiceAmount,
		AmountPaid:    i.AmountPaid,
		Status:        i.Status.String(),
		BillingPeriod: i.BillingPeriod,
		DueDate:       i.DueDate,
		SettledAt:     i.SettledAt,
		Memo:          i.Memo,
	}
	model.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	return model
}

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	TenantAggregateModel
	PaymentReference string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_payments_tenant_reference,composite:tenant_id"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Mode             string          `gorm:"type:varchar(20);not null"`
	Receipted        bool            `gorm:"not null;default:false;index"`
	ReceiptID        *uuid.UUID      `gorm:"type:uuid"`
	ReceivedAt       time.Time       `gorm:"not null"`
	Memo             string          `gorm:"type:text"`
}

// TableName specifies the table name for PaymentModel
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	payment := &billing.Payment{
		PaymentReference: m.PaymentReference,
		CustomerID:       m.CustomerID,
		Amount:           m.Amount,
		Mode:             billing.PaymentMode(m.Mode),
		Receipted:        m.Receipted,
		ReceiptID:        m.ReceiptID,
		ReceivedAt:       m.ReceivedAt,
		Memo:             m.Memo,
	}
	m.PopulateTenantAggregateRoot(&payment.TenantAggregateRoot)
	return payment
}

// PaymentModelFromDomain converts a domain payment to its persistence model
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	model := &PaymentModel{
		PaymentReference: p.PaymentReference,
		CustomerID:       p.CustomerID,
		Amount:           p.Amount,
		Mode:             p.Mode.String(),
		Receipted:        p.Receipted,
		ReceiptID:        p.ReceiptID,
		ReceivedAt:       p.ReceivedAt,
		Memo:             p.Memo,
	}
	model.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return model
}

// ReceiptModel is the persistence model for receipts. Line items are stored
// as a JSONB document in allocation order.
type ReceiptModel struct {
	TenantAggregateModel
	ReceiptNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_receipts_tenant_number,composite:tenant_id"`
	CustomerID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	PaymentID     uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex"`
	TotalAmount   decimal.Decimal          `gorm:"type:decimal(20,4);not null"`
	Mode          string                   `gorm:"type:varchar(20);not null"`
	LineItems     billing.ReceiptLineItems `gorm:"type:jsonb;not null;default:'[]'"`
	IssuedAt      time.Time                `gorm:"not null"`
}

// TableName specifies the table name for ReceiptModel
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain receipt
func (m *ReceiptModel) ToDomain() *billing.Receipt {
	receipt := &billing.Receipt{
		ReceiptNumber: m.ReceiptNumber,
		CustomerID:    m.CustomerID,
		PaymentID:     m.PaymentID,
		TotalAmount:   m.TotalAmount,
		Mode:          billing.PaymentMode(m.Mode),
		LineItems:     m.LineItems,
		IssuedAt:      m.IssuedAt,
	}
	m.PopulateTenantAggregateRoot(&receipt.TenantAggregateRoot)
	return receipt
}

// ReceiptModelFromDomain converts a domain receipt to its persistence model
func ReceiptModelFromDomain(r *billing.Receipt) *ReceiptModel {
	model := &ReceiptModel{
		ReceiptNumber: r.ReceiptNumber,
		CustomerID:    r.CustomerID,
		PaymentID:     r.PaymentID,
		TotalAmount:   r.TotalAmount,
		Mode:          r.Mode.String(),
		LineItems:     r.LineItems,
		IssuedAt:      r.IssuedAt,
	}
	model.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return model
}
