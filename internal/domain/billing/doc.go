// Package billing provides the domain model for payment allocation and
// invoice reconciliation in a multi-tenant billing platform.
//
// The package owns the entities the allocation engine works over:
//   - Customer: the payer, carrying a credit-only closing balance
//   - Invoice: a receivable with an amount, amount paid, and UNPAID/PAID status
//   - Payment: money received from a gateway, receipted at most once
//   - Receipt: the durable record of one allocation run, with ordered line items
//
// BuildAllocationPlan spreads a payment amount across a customer's unpaid
// invoices oldest first, settling each invoice as far as the remaining funds
// reach before moving to the next. Whatever remains after the last invoice is
// banked as customer credit. The plan is pure; persistence and transaction
// control live in the application and infrastructure layers.
//
// Errors cross the domain boundary as shared.DomainError values with stable
// codes so callers can map them onto transport status codes.
package billing
