package billing

import "github.com/billflow/backend/internal/domain/shared"

// Error codes surfaced by the billing module. The allocation engine maps
// every failure to exactly one of these.
const (
	ErrCodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	ErrCodeCustomerNotFound      = "CUSTOMER_NOT_FOUND"
	ErrCodeAlreadyProcessed      = "ALREADY_PROCESSED"
	ErrCodeInternalInconsistency = "INTERNAL_INCONSISTENCY"
	ErrCodeStoreUnavailable      = "STORE_UNAVAILABLE"
)

// Common billing errors
var (
	ErrPaymentNotFound  = shared.NewDomainError(ErrCodePaymentNotFound, "Payment not found")
	ErrCustomerNotFound = shared.NewDomainError(ErrCodeCustomerNotFound, "Customer not found")
	ErrAlreadyProcessed = shared.NewDomainError(ErrCodeAlreadyProcessed, "Payment has already been receipted")
)

// NewInconsistencyError reports corrupted or impossible persistent state.
// Callers must abort the surrounding transaction and must not retry.
func NewInconsistencyError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInternalInconsistency, message)
}

// NewStoreUnavailableError wraps an infrastructure failure behind the stable
// retryable code.
func NewStoreUnavailableError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeStoreUnavailable, message)
}
