package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
)

// AuditRepository persists the append-only event chain. There is
// deliberately no update or delete method.
type AuditRepository interface {
	Create(tx *gorm.DB, event *model.AuditEvent) error
	// LastForUpdate locks the newest event of a tenant chain so the next
	// link's prev-hash cannot race with a concurrent append.
	LastForUpdate(tx *gorm.DB, tenantID uuid.UUID) (*model.AuditEvent, error)
	FindBySequence(tenantID uuid.UUID, sequence int64) (*model.AuditEvent, error)
	FindRange(tenantID uuid.UUID, fromSeq, toSeq int64) ([]model.AuditEvent, error)
	FindByTenant(tenantID uuid.UUID, limit, offset int) ([]model.AuditEvent, error)
	FindByEntity(entityType, entityID string, limit, offset int) ([]model.AuditEvent, error)
	MaxSequence(tenantID uuid.UUID) (int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Create(tx *gorm.DB, event *model.AuditEvent) error {
	return tx.Create(event).Error
}

func (r *auditRepo) LastForUpdate(tx *gorm.DB, tenantID uuid.UUID) (*model.AuditEvent, error) {
	var event model.AuditEvent
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).
		Order("sequence DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *auditRepo) FindBySequence(tenantID uuid.UUID, sequence int64) (*model.AuditEvent, error) {
	var event model.AuditEvent
	err := r.db.Where("tenant_id = ? AND sequence = ?", tenantID, sequence).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *auditRepo) FindRange(tenantID uuid.UUID, fromSeq, toSeq int64) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.
		Where("tenant_id = ? AND sequence >= ? AND sequence <= ?", tenantID, fromSeq, toSeq).
		Order("sequence ASC").
		Find(&events).Error
	return events, err
}

func (r *auditRepo) FindByTenant(tenantID uuid.UUID, limit, offset int) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.
		Where("tenant_id = ?", tenantID).
		Order("sequence DESC").Limit(limit).Offset(offset).
		Find(&events).Error
	return events, err
}

func (r *auditRepo) FindByEntity(entityType, entityID string, limit, offset int) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("sequence DESC").Limit(limit).Offset(offset).
		Find(&events).Error
	return events, err
}

func (r *auditRepo) MaxSequence(tenantID uuid.UUID) (int64, error) {
	var max int64
	err := r.db.Model(&model.AuditEvent{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&max).Error
	return max, err
}
