package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
)

// InventoryRepository persists per-(location, product) stock records.
// Mutating lookups take the caller's *gorm.DB so lock and write happen in
// one transaction.
type InventoryRepository interface {
	FindForUpdate(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID) (*model.InventoryRecord, error)
	FindOrCreateForUpdate(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, createdBy string) (*model.InventoryRecord, error)
	Save(tx *gorm.DB, record *model.InventoryRecord) error
	Find(loc model.LocationRef, productID uuid.UUID) (*model.InventoryRecord, error)
	FindByLocation(loc model.LocationRef) ([]model.InventoryRecord, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

// FindForUpdate locks the stock row (SELECT ... FOR UPDATE) so concurrent
// operations on the same key serialize.
func (r *inventoryRepo) FindForUpdate(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("location_type = ? AND location_id = ? AND product_id = ?", loc.Type, loc.ID, productID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindOrCreateForUpdate locks the stock row, creating an empty record first
// when the (location, product) pair has never held stock.
func (r *inventoryRepo) FindOrCreateForUpdate(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, createdBy string) (*model.InventoryRecord, error) {
	record, err := r.FindForUpdate(tx, loc, productID)
	if err == nil {
		return record, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	fresh := &model.InventoryRecord{
		LocationType: loc.Type,
		LocationID:   loc.ID,
		ProductID:    productID,
	}
	fresh.CreatedBy = createdBy
	fresh.UpdatedBy = createdBy
	// ON CONFLICT DO NOTHING covers the race where two first stock events
	// create the same key; the retried lock then finds the winner's row.
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.FindForUpdate(tx, loc, productID)
}

func (r *inventoryRepo) Save(tx *gorm.DB, record *model.InventoryRecord) error {
	return tx.Save(record).Error
}

func (r *inventoryRepo) Find(loc model.LocationRef, productID uuid.UUID) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	err := r.db.
		Where("location_type = ? AND location_id = ? AND product_id = ?", loc.Type, loc.ID, productID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *inventoryRepo) FindByLocation(loc model.LocationRef) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	err := r.db.
		Where("location_type = ? AND location_id = ?", loc.Type, loc.ID).
		Order("product_id ASC").
		Find(&records).Error
	return records, err
}
