package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
)

type TransferRepository interface {
	Create(tx *gorm.DB, transfer *model.TransferRequest) error
	Save(tx *gorm.DB, transfer *model.TransferRequest) error
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.TransferRequest, error)
	FindByID(id uuid.UUID) (*model.TransferRequest, error)
	FindByCompany(companyID uuid.UUID, status model.TransferStatus, limit, offset int) ([]model.TransferRequest, error)
	FindByLocation(loc model.LocationRef, limit, offset int) ([]model.TransferRequest, error)
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Create(tx *gorm.DB, transfer *model.TransferRequest) error {
	return tx.Create(transfer).Error
}

func (r *transferRepo) Save(tx *gorm.DB, transfer *model.TransferRequest) error {
	return tx.Save(transfer).Error
}

// FindForUpdate locks the transfer row so concurrent transitions on the
// same request serialize; the loser re-reads a changed status and fails
// the transition check instead of corrupting state.
func (r *transferRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.TransferRequest, error) {
	var transfer model.TransferRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transfer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepo) FindByID(id uuid.UUID) (*model.TransferRequest, error) {
	var transfer model.TransferRequest
	if err := r.db.First(&transfer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepo) FindByCompany(companyID uuid.UUID, status model.TransferStatus, limit, offset int) ([]model.TransferRequest, error) {
	var transfers []model.TransferRequest
	q := r.db.Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("requested_at DESC").Limit(limit).Offset(offset).Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) FindByLocation(loc model.LocationRef, limit, offset int) ([]model.TransferRequest, error) {
	var transfers []model.TransferRequest
	err := r.db.
		Where("(from_location_type = ? AND from_location_id = ?) OR (to_location_type = ? AND to_location_id = ?)",
			loc.Type, loc.ID, loc.Type, loc.ID).
		Order("requested_at DESC").Limit(limit).Offset(offset).
		Find(&transfers).Error
	return transfers, err
}
