package handler

import (
	"time"

	appbilling "github.com/billflow/backend/internal/application/billing"
	"github.com/billflow/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// Monetary amounts are serialized as decimal strings. JSON numbers are
// float64 on the wire and would round the fixed-point values.

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	ClosingBalance string    `json:"closing_balance"`
	CreditBalance  string    `json:"credit_balance"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCustomerResponse maps a customer to its API representation
func NewCustomerResponse(customer *billing.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             customer.ID,
		Name:           customer.Name,
		Phone:          customer.Phone,
		Email:          customer.Email,
		ClosingBalance: customer.ClosingBalance.String(),
		CreditBalance:  customer.CreditBalance().String(),
		Active:         customer.Active,
		CreatedAt:      customer.CreatedAt,
		UpdatedAt:      customer.UpdatedAt,
	}
}

// NewCustomerListResponse maps a page of customers
func NewCustomerListResponse(customers []billing.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, NewCustomerResponse(&customers[i]))
	}
	return out
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	InvoiceAmount string     `json:"invoice_amount"`
	AmountPaid    string     `json:"amount_paid"`
	Outstanding   string     `json:"outstanding"`
	Status        string     `json:"status"`
	BillingPeriod string     `json:"billing_period,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
	Memo          string     `json:"memo,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewInvoiceResponse maps an invoice to its API representation
func NewInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID,
		InvoiceAmount: invoice.InvoiceAmount.String(),
		AmountPaid:    invoice.AmountPaid.String(),
		Outstanding:   invoice.Outstanding().String(),
		Status:        invoice.Status.String(),
		BillingPeriod: invoice.BillingPeriod,
		DueDate:       invoice.DueDate,
		SettledAt:     invoice.SettledAt,
		Memo:          invoice.Memo,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

// NewInvoiceListResponse maps a page of invoices
func NewInvoiceListResponse(invoices []billing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, NewInvoiceResponse(&invoices[i]))
	}
	return out
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID  `json:"id"`
	PaymentReference string     `json:"payment_reference"`
	CustomerID       uuid.UUID  `json:"customer_id"`
	Amount           string     `json:"amount"`
	Mode             string     `json:"mode"`
	Receipted        bool       `json:"receipted"`
	ReceiptID        *uuid.UUID `json:"receipt_id,omitempty"`
	ReceivedAt       time.Time  `json:"received_at"`
	Memo             string     `json:"memo,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewPaymentResponse maps a payment to its API representation
func NewPaymentResponse(payment *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               payment.ID,
		PaymentReference: payment.PaymentReference,
		CustomerID:       payment.CustomerID,
		Amount:           payment.Amount.String(),
		Mode:             payment.Mode.String(),
		Receipted:        payment.Receipted,
		ReceiptID:        payment.ReceiptID,
		ReceivedAt:       payment.ReceivedAt,
		Memo:             payment.Memo,
		CreatedAt:        payment.CreatedAt,
		UpdatedAt:        payment.UpdatedAt,
	}
}

// NewPaymentListResponse maps a page of payments
func NewPaymentListResponse(payments []billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, NewPaymentResponse(&payments[i]))
	}
	return out
}

// ReceiptLineResponse represents one receipt line item
type ReceiptLineResponse struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	AppliedAmount string    `json:"applied_amount"`
}

// ReceiptResponse represents a receipt in API responses. Line items keep
// the order the allocation engine applied them in.
type ReceiptResponse struct {
	ID            uuid.UUID             `json:"id"`
	ReceiptNumber string                `json:"receipt_number"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	PaymentID     uuid.UUID             `json:"payment_id"`
	TotalAmount   string                `json:"total_amount"`
	Mode          string                `json:"mode"`
	LineItems     []ReceiptLineResponse `json:"line_items"`
	IssuedAt      time.Time             `json:"issued_at"`
	CreatedAt     time.Time             `json:"created_at"`
}

// NewReceiptResponse maps a receipt to its API representation
func NewReceiptResponse(receipt *billing.Receipt) ReceiptResponse {
	lines := make([]ReceiptLineResponse, 0, len(receipt.LineItems))
	for _, item := range receipt.LineItems {
		lines = append(lines, ReceiptLineResponse{
			InvoiceID:     item.InvoiceID,
			InvoiceNumber: item.InvoiceNumber,
			AppliedAmount: item.AppliedAmount.String(),
		})
	}
	return ReceiptResponse{
		ID:            receipt.ID,
		ReceiptNumber: receipt.ReceiptNumber,
		CustomerID:    receipt.CustomerID,
		PaymentID:     receipt.PaymentID,
		TotalAmount:   receipt.TotalAmount.String(),
		Mode:          receipt.Mode.String(),
		LineItems:     lines,
		IssuedAt:      receipt.IssuedAt,
		CreatedAt:     receipt.CreatedAt,
	}
}

// NewReceiptListResponse maps a page of receipts
func NewReceiptListResponse(receipts []billing.Receipt) []ReceiptResponse {
	out := make([]ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		out = append(out, NewReceiptResponse(&receipts[i]))
	}
	return out
}

// AllocationLineResponse represents one allocation line in the apply result
type AllocationLineResponse struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	AppliedAmount string    `json:"applied_amount"`
}

// AllocationResponse represents the outcome of allocating a payment
type AllocationResponse struct {
	PaymentID       uuid.UUID                `json:"payment_id"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	ReceiptID       *uuid.UUID               `json:"receipt_id,omitempty"`
	ReceiptNumber   string                   `json:"receipt_number,omitempty"`
	Lines           []AllocationLineResponse `json:"lines"`
	TotalApplied    string                   `json:"total_applied"`
	Overpayment     string                   `json:"overpayment"`
	CustomerBalance string                   `json:"customer_balance"`
}

// NewAllocationResponse maps an allocation result to its API representation
func NewAllocationResponse(result *appbilling.AllocationResult) AllocationResponse {
	lines := make([]AllocationLineResponse, 0, len(result.Lines))
	for _, line := range result.Lines {
		lines = append(lines, AllocationLineResponse{
			InvoiceID:     line.InvoiceID,
			InvoiceNumber: line.InvoiceNumber,
			AppliedAmount: line.AppliedAmount.String(),
		})
	}
	return AllocationResponse{
		PaymentID:       result.PaymentID,
		CustomerID:      result.CustomerID,
		ReceiptID:       result.ReceiptID,
		ReceiptNumber:   result.ReceiptNumber,
		Lines:           lines,
		TotalApplied:    result.TotalApplied.String(),
		Overpayment:     result.Overpayment.String(),
		CustomerBalance: result.CustomerBalance.String(),
	}
}
