package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/billflow/backend/internal/domain/billing"
	"github.com/billflow/backend/internal/domain/shared"
	"github.com/billflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements billing.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by ID for a tenant
func (r *GormReceiptRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
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

// FindByPaymentID finds the receipt issued for a payment, if any
func (r *GormReceiptRepository) FindByPaymentID(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := dbFromContext(ctx, r.db).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists receipts for a tenant with filtering
func (r *GormReceiptRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptFilter) (*shared.Paginated[billing.Receipt], error) {
	query := dbFromContext(ctx, r.db).Model(&models.ReceiptModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ReceiptSortFields, "issued_at")
	var receiptModels []models.ReceiptModel
	if err := query.
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	receipts := make([]billing.Receipt, len(receiptModels))
	for i, model := range receiptModels {
		receipts[i] = *model.ToDomain()
	}
	return &shared.Paginated[billing.Receipt]{Items: receipts, Total: total}, nil
}

// Save persists a receipt. Receipts are immutable, so this is insert-only.
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *billing.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	return dbFromContext(ctx, r.db).Create(model).Error
}

// GenerateReceiptNumber generates a unique receipt number for a tenant
func (r *GormReceiptRepository) GenerateReceiptNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	// Format: RCT-YYYYMMDD-XXXXX
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("RCT-%s-", date)

	var maxNumber string
	if err := dbFromContext(ctx, r.db).
		Model(&models.ReceiptModel{}).
		Select("receipt_number").
		Where("tenant_id = ? AND receipt_number LIKE ?", tenantID, prefix+"%").
		Order("receipt_number DESC").
		Limit(1).
		Pluck("receipt_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// Ensure GormReceiptRepository implements billing.ReceiptRepository
var _ billing.ReceiptRepository = (*GormReceiptRepository)(nil)
