package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestCtx builds a gin test context with a GET request attached so header
// and context lookups both work.
func newTestCtx() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context string",
			setup:      func(c *gin.Context) { c.Set(RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(RequestIDKey, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-id")
				c.Request.Header.Set(RequestIDKey, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCtx()
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestGetTenantID(t *testing.T) {
	t.Run("from JWT context", func(t *testing.T) {
		c, _ := newTestCtx()
		tenantID := uuid.New()
		c.Set("jwt_tenant_id", tenantID.String())
		c.Set("jwt_user_id", uuid.New().String())

		got, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, tenantID, got)
	})

	t.Run("falls back to development tenant", func(t *testing.T) {
		c, _ := newTestCtx()

		got, err := getTenantID(c)
		require.NoError(t, err)
		assert.Equal(t, uuid.MustParse("00000000-0000-0000-0000-000000000001"), got)
	})
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success", func(t *testing.T) {
		c, w := newTestCtx()
		h.Success(c, map[string]string{"receipt_number": "RCT-20260827-00001"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("SuccessWithMeta", func(t *testing.T) {
		c, w := newTestCtx()
		h.SuccessWithMeta(c, []string{"item1", "item2"}, 100, 1, 10)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(100), resp.Meta.Total)
	})

	t.Run("Created", func(t *testing.T) {
		c, w := newTestCtx()
		h.Created(c, map[string]string{"id": "123"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}

	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) { h.NoContent(c) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/test", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		send         func(*BaseHandler, *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "Invalid request") },
			http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "Resource not found") },
			http.StatusNotFound, dto.ErrCodeNotFound},
		{"Unauthorized", func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "Not authenticated") },
			http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"Forbidden", func(h *BaseHandler, c *gin.Context) { h.Forbidden(c, "Access denied") },
			http.StatusForbidden, dto.ErrCodeForbidden},
		{"Conflict", func(h *BaseHandler, c *gin.Context) { h.Conflict(c, "Resource conflict") },
			http.StatusConflict, dto.ErrCodeConflict},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "Server error") },
			http.StatusInternalServerError, dto.ErrCodeInternal},
		{"ServiceUnavailable", func(h *BaseHandler, c *gin.Context) { h.ServiceUnavailable(c, "Store is down") },
			http.StatusServiceUnavailable, dto.ErrCodeStoreUnavailable},
		{"TooManyRequests", func(h *BaseHandler, c *gin.Context) { h.TooManyRequests(c, "Rate limit exceeded") },
			http.StatusTooManyRequests, dto.ErrCodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestCtx()

			tt.send(h, c)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorWithRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestCtx()
	c.Set(RequestIDKey, "test-request-123")

	h.BadRequest(c, "Invalid request")

	assert.Equal(t, "test-request-123", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestCtx()
	c.Set(RequestIDKey, "val-req-456")

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "amount", Message: "Must be a decimal amount greater than zero"},
		{Field: "customer_id", Message: "Required"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "val-req-456", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"NOT_FOUND error", shared.ErrNotFound,
			http.StatusNotFound, dto.ErrCodeNotFound},
		{"PAYMENT_NOT_FOUND error", billing.ErrPaymentNotFound,
			http.StatusNotFound, dto.ErrCodePaymentNotFound},
		{"CUSTOMER_NOT_FOUND error", billing.ErrCustomerNotFound,
			http.StatusNotFound, dto.ErrCodeCustomerNotFound},
		{"ALREADY_PROCESSED error", billing.ErrAlreadyProcessed,
			http.StatusConflict, dto.ErrCodeAlreadyProcessed},
		{"INTERNAL_INCONSISTENCY error", billing.NewInconsistencyError("plan lost money"),
			http.StatusInternalServerError, dto.ErrCodeInternalInconsistency},
		{"STORE_UNAVAILABLE error", billing.NewStoreUnavailableError("connection refused"),
			http.StatusServiceUnavailable, dto.ErrCodeStoreUnavailable},
		{"INVALID_INPUT error", shared.ErrInvalidInput,
			http.StatusBadRequest, "INVALID_INPUT"},
		{"UNAUTHORIZED error", shared.ErrUnauthorized,
			http.StatusUnauthorized, dto.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestCtx()

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerHandleDomainErrorWithRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestCtx()
	c.Set(RequestIDKey, "domain-err-req")

	h.HandleDomainError(c, shared.ErrNotFound)

	assert.Equal(t, "domain-err-req", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerHandleNonDomainError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestCtx()

	h.HandleDomainError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestCtx()
		h.HandleError(c, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("domain error maps to its status", func(t *testing.T) {
		c, w := newTestCtx()
		h.HandleError(c, billing.ErrAlreadyProcessed)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("standard error becomes 500", func(t *testing.T) {
		c, w := newTestCtx()
		h.HandleError(c, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("wrapped domain error unwraps", func(t *testing.T) {
		c, w := newTestCtx()
		h.HandleError(c, fmt.Errorf("additional context: %w", shared.ErrNotFound))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})
}
