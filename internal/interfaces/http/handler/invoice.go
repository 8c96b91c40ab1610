package handler

import (
	"time"

	appbilling "github.com/billflow/backend/internal/application/billing"
	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appbilling.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appbilling.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoiceRequest represents a request to bill a customer.
// Amount is a decimal string, e.g. "1250.00".
type CreateInvoiceRequest struct {
	CustomerID    string     `json:"customer_id" binding:"required,uuid"`
	Amount        string     `json:"amount" binding:"required,decimal_gt_zero"`
	BillingPeriod string     `json:"billing_period" binding:"max=20"`
	DueDate       *time.Time `json:"due_date"`
	Memo          string     `json:"memo" binding:"max=500"`
}

// ListInvoicesRequest carries list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=UNPAID PAID"`
}

// Create bills a customer with a new unpaid invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), appbilling.CreateInvoiceRequest{
		TenantID:      tenantID,
		CustomerID:    customerID,
		Amount:        amount,
		BillingPeriod: req.BillingPeriod,
		DueDate:       req.DueDate,
		Memo:          req.Memo,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, NewInvoiceResponse(invoice))
}

// GetByID returns a single invoice
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, NewInvoiceResponse(invoice))
}

// List returns a page of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := ListInvoicesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
	}
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID")
			return
		}
		filter.CustomerID = &id
	}
	if req.Status != "" {
		status := billing.InvoiceStatus(req.Status)
		filter.Status = &status
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, NewInvoiceListResponse(page.Items), page.Total, req.Page, req.PageSize)
}

// ListUnpaidForCustomer returns a customer's unpaid invoices oldest first,
// the order allocations will consume them in
func (h *InvoiceHandler) ListUnpaidForCustomer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	invoices, err := h.invoiceService.ListUnpaidInvoices(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	out := make([]InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		out = append(out, NewInvoiceResponse(invoice))
	}
	h.Success(c, out)
}
