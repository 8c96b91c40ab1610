package persistence

import (
	"context"
	"errors"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements billing.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID for a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Customer, error) {
	var model models.CustomerModel
	if err := dbFromContext(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a customer by ID with the row locked until the
// surrounding transaction ends. Concurrent allocations for the same customer
// serialize on this lock.
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Customer, error) {
	var model models.CustomerModel
	if err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists customers for a tenant with filtering
func (r *GormCustomerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.CustomerFilter) (*shared.Paginated[billing.Customer], error) {
	query := dbFromContext(ctx, r.db).Model(&models.CustomerModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CustomerSortFields, "created_at")
	var customerModels []models.CustomerModel
	if err := query.
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]billing.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return &shared.Paginated[billing.Customer]{Items: customers, Total: total}, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *billing.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *billing.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	result := dbFromContext(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", customer.ID, customer.Version-1).
		Select("name", "phone", "email", "closing_balance", "active", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Ensure GormCustomerRepository implements billing.CustomerRepository
var _ billing.CustomerRepository = (*GormCustomerRepository)(nil)
