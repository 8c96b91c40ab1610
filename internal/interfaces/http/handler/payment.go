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

// PaymentHandler handles payment recording, queries and allocation
type PaymentHandler struct {
	BaseHandler
	paymentService    *appbilling.PaymentService
	allocationService *appbilling.AllocationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	paymentService *appbilling.PaymentService,
	allocationService *appbilling.AllocationService,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService:    paymentService,
		allocationService: allocationService,
	}
}

// RecordPaymentRequest represents a gateway payment notification.
// Amount is a decimal string, e.g. "120.00".
type RecordPaymentRequest struct {
	CustomerID string     `json:"customer_id" binding:"required,uuid"`
	Reference  string     `json:"reference" binding:"required,min=1,max=100"`
	Amount     string     `json:"amount" binding:"required,decimal_gt_zero"`
	Mode       string     `json:"mode" binding:"required,oneof=CASH MPESA BANK_TRANSFER CHEQUE CARD OTHER"`
	ReceivedAt *time.Time `json:"received_at"`
	Memo       string     `json:"memo" binding:"max=500"`
}

// AllocatePaymentRequest identifies the customer a payment is allocated for
type AllocatePaymentRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
}

// ListPaymentsRequest carries list query parameters
type ListPaymentsRequest struct {
	dto.ListRequest
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Receipted  *bool  `form:"receipted"`
}

// Record stores a payment notification. Recording the same reference twice
// returns the existing payment rather than a duplicate.
func (h *PaymentHandler) Record(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RecordPaymentRequest
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

	var receivedAt time.Time
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), appbilling.RecordPaymentRequest{
		TenantID:   tenantID,
		CustomerID: customerID,
		Reference:  req.Reference,
		Amount:     amount,
		Mode:       billing.PaymentMode(req.Mode),
		ReceivedAt: receivedAt,
		Memo:       req.Memo,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, NewPaymentResponse(payment))
}

// Allocate applies a payment to the customer's unpaid invoices, oldest
// first, and banks any remainder as customer credit.
//
// A payment is allocated exactly once: replays return ALREADY_PROCESSED.
func (h *PaymentHandler) Allocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req AllocatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	result, err := h.allocationService.Apply(c.Request.Context(), appbilling.AllocationRequest{
		TenantID:   tenantID,
		PaymentID:  paymentID,
		CustomerID: customerID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, NewAllocationResponse(result))
}

// GetByID returns a single payment
func (h *PaymentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, NewPaymentResponse(payment))
}

// List returns a page of payments
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := ListPaymentsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.PaymentFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		Receipted: req.Receipted,
	}
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID")
			return
		}
		filter.CustomerID = &id
	}

	page, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, NewPaymentListResponse(page.Items), page.Total, req.Page, req.PageSize)
}
