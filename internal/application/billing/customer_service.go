package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService handles customer registration and queries
type CustomerService struct {
	customerRepo billing.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo billing.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerRequest carries the fields for registering a customer
type CreateCustomerRequest struct {
	TenantID uuid.UUID
	Name     string
	Phone    string
	Email    string
}

// CreateCustomer registers a new customer with a zero balance
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*billing.Customer, error) {
	customer, err := billing.NewCustomer(req.TenantID, req.Name, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return customer, nil
}

// GetCustomer returns a customer with its current closing balance
func (s *CustomerService) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}
	return customer, nil
}

// ListCustomers lists customers for a tenant
func (s *CustomerService) ListCustomers(ctx context.Context, tenantID uuid.UUID, filter billing.CustomerFilter) (*shared.Paginated[billing.Customer], error) {
	page, err := s.customerRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return page, nil
}
