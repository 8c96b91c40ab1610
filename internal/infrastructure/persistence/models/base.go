package models

import (
	"time"

	"github.com/billflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel carries the identity and timestamp columns shared by every
// table. CreatedAt is the FIFO ordering key the allocation queries sort on,
// so it is never rewritten after insert.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity copies identity and timestamps from the domain entity.
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// TenantAggregateModel extends BaseModel with the tenant column every
// billing query filters on, plus the optimistic-lock version.
type TenantAggregateModel struct {
	BaseModel
	Version  int       `gorm:"not null;default:1"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainTenantAggregateRoot copies the aggregate header fields from the
// domain side into the model.
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Version = t.Version
	m.TenantID = t.TenantID
}

// PopulateTenantAggregateRoot writes the stored header fields back onto a
// domain aggregate during hydration.
func (m *TenantAggregateModel) PopulateTenantAggregateRoot(t *shared.TenantAggregateRoot) {
	entity := &t.BaseAggregateRoot.BaseEntity
	entity.ID = m.ID
	entity.CreatedAt = m.CreatedAt
	entity.UpdatedAt = m.UpdatedAt
	t.BaseAggregateRoot.Version = m.Version
	t.TenantID = m.TenantID
}
