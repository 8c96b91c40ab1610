package dto

import "net/http"

// Error codes returned by the HTTP layer. Domain errors carry their own
// codes; the constants here cover transport-level failures and the codes
// handlers raise directly.
const (
	// General errors
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeValidation   = "VALIDATION_ERROR"

	// Allocation engine taxonomy. These are stable API contract values:
	// clients retry on STORE_UNAVAILABLE and never on INTERNAL_INCONSISTENCY.
	ErrCodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	ErrCodeCustomerNotFound      = "CUSTOMER_NOT_FOUND"
	ErrCodeAlreadyProcessed      = "ALREADY_PROCESSED"
	ErrCodeInternalInconsistency = "INTERNAL_INCONSISTENCY"
	ErrCodeStoreUnavailable      = "STORE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodePaymentNotFound:       http.StatusNotFound,
	ErrCodeCustomerNotFound:      http.StatusNotFound,
	ErrCodeAlreadyProcessed:      http.StatusConflict,
	ErrCodeInternalInconsistency: http.StatusInternalServerError,
	ErrCodeStoreUnavailable:      http.StatusServiceUnavailable,

	// Domain validation and state codes
	"INVALID_INPUT":             http.StatusBadRequest,
	"INVALID_AMOUNT":            http.StatusBadRequest,
	"INVALID_CUSTOMER":          http.StatusBadRequest,
	"INVALID_CUSTOMER_NAME":     http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER":    http.StatusBadRequest,
	"INVALID_RECEIPT_NUMBER":    http.StatusBadRequest,
	"INVALID_PAYMENT":           http.StatusBadRequest,
	"INVALID_PAYMENT_REFERENCE": http.StatusBadRequest,
	"INVALID_PAYMENT_MODE":      http.StatusBadRequest,
	"INVALID_SORT_FIELD":        http.StatusBadRequest,
	"INVALID_SORT_ORDER":        http.StatusBadRequest,
	"INVALID_STATE":             http.StatusConflict,
	"ALREADY_EXISTS":            http.StatusConflict,
	"CONCURRENCY_CONFLICT":      http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR":     http.StatusConflict,
	"DATABASE_ERROR":            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// legacyErrorCodeMapping translates codes that predate the current taxonomy
var legacyErrorCodeMapping = map[string]string{
	"RESOURCE_NOT_FOUND": ErrCodeNotFound,
	"DUPLICATE_RESOURCE": "ALREADY_EXISTS",
	"VERSION_CONFLICT":   "OPTIMISTIC_LOCK_ERROR",
}

// NormalizeErrorCode maps legacy error codes to their current equivalents.
// Unknown codes pass through unchanged so new domain codes surface as-is.
func NormalizeErrorCode(code string) string {
	if normalized, ok := legacyErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}

// IsRetryable reports whether a client may retry the request that produced
// this error code. Only the transient store failure qualifies.
func IsRetryable(code string) bool {
	return code == ErrCodeStoreUnavailable
}
