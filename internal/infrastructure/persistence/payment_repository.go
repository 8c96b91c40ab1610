package persistence

import (
	"context"
	"errors"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID for a tenant
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
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

// FindByReference finds a payment by its external gateway reference
func (r *GormPaymentRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := dbFromContext(ctx, r.db).
		Where("tenant_id = ? AND payment_reference = ?", tenantID, reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists payments for a tenant with filtering
func (r *GormPaymentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (*shared.Paginated[billing.Payment], error) {
	query := dbFromContext(ctx, r.db).Model(&models.PaymentModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Receipted != nil {
		query = query.Where("receipted = ?", *filter.Receipted)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "received_at")
	var paymentModels []models.PaymentModel
	if err := query.
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return &shared.Paginated[billing.Payment]{Items: payments, Total: total}, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return dbFromContext(ctx, r.db).Save(model).Error
}

// MarkReceipted flips the receipted flag as a compare-and-set on the
// unreceipted row. A concurrent caller that receipted the payment first makes
// the update match zero rows, which surfaces as ErrAlreadyProcessed.
func (r *GormPaymentRepository) MarkReceipted(ctx context.Context, payment *billing.Payment) error {
	result := dbFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND id = ? AND receipted = ?", payment.TenantID, payment.ID, false).
		Updates(map[string]interface{}{
			"receipted":  true,
			"receipt_id": payment.ReceiptID,
			"version":    payment.Version,
			"updated_at": payment.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billing.ErrAlreadyProcessed
	}
	return nil
}

// Ensure GormPaymentRepository implements billing.PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
