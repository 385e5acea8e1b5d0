package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WinKyaw/InventSight-sub004/pkg/apperror"
)

// LocationType discriminates warehouse vs store locations. Location
// directory data itself lives in an external catalog service; only
// (type, id) pairs are stored here.
type LocationType string

const (
	LocationWarehouse LocationType = "WAREHOUSE"
	LocationStore     LocationType = "STORE"
)

// LocationRef identifies one stock-holding location.
type LocationRef struct {
	Type LocationType `json:"type" validate:"required,oneof=WAREHOUSE STORE"`
	ID   uuid.UUID    `json:"id" validate:"uuid_required"`
}

func (l LocationRef) String() string {
	return fmt.Sprintf("%s:%s", l.Type, l.ID)
}

// InventoryRecord is the authoritative stock counter for one product at one
// location. Quantities are mutated exclusively through Reserve, Release,
// AddStock and RemoveStock; records are created lazily on the first stock
// event and never deleted, only zeroed.
type InventoryRecord struct {
	BaseModel
	LocationType LocationType `gorm:"type:varchar(20);not null;uniqueIndex:idx_inventory_location_product" json:"location_type"`
	LocationID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_location_product" json:"location_id"`
	ProductID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_location_product" json:"product_id"`

	CurrentQuantity  int `gorm:"not null;default:0" json:"current_quantity"`
	ReservedQuantity int `gorm:"not null;default:0" json:"reserved_quantity"`

	MinimumStockLevel int  `gorm:"not null;default:0" json:"minimum_stock_level"`
	MaximumStockLevel *int `json:"maximum_stock_level,omitempty"`
	ReorderPoint      int  `gorm:"not null;default:0" json:"reorder_point"`

	LastUpdated time.Time `json:"last_updated"`
}

// Location returns the record's location reference.
func (r *InventoryRecord) Location() LocationRef {
	return LocationRef{Type: r.LocationType, ID: r.LocationID}
}

// AvailableQuantity is the stock not spoken for by reservations.
// Invariant: never negative, because ReservedQuantity <= CurrentQuantity.
func (r *InventoryRecord) AvailableQuantity() int {
	return r.CurrentQuantity - r.ReservedQuantity
}

// Reserve places a hold against available stock.
func (r *InventoryRecord) Reserve(qty int) error {
	if qty <= 0 {
		return apperror.InvalidQuantity("reserve quantity must be positive")
	}
	if qty > r.AvailableQuantity() {
		return apperror.InsufficientStock(qty, r.AvailableQuantity())
	}
	r.ReservedQuantity += qty
	r.LastUpdated = time.Now()
	return nil
}

// Release gives back part of the reservation. Over-release is rejected,
// not clamped.
func (r *InventoryRecord) Release(qty int) error {
	if qty <= 0 {
		return apperror.InvalidQuantity("release quantity must be positive")
	}
	if qty > r.ReservedQuantity {
		return apperror.InvalidQuantity(fmt.Sprintf("cannot release %d units, only %d reserved", qty, r.ReservedQuantity))
	}
	r.ReservedQuantity -= qty
	r.LastUpdated = time.Now()
	return nil
}

// AddStock increments physical stock (receiving/restock path).
func (r *InventoryRecord) AddStock(qty int) error {
	if qty <= 0 {
		return apperror.InvalidQuantity("add quantity must be positive")
	}
	r.CurrentQuantity += qty
	r.LastUpdated = time.Now()
	return nil
}

// RemoveStock decrements physical stock. Reserved units cannot be removed.
func (r *InventoryRecord) RemoveStock(qty int) error {
	if qty <= 0 {
		return apperror.InvalidQuantity("remove quantity must be positive")
	}
	if qty > r.AvailableQuantity() {
		return apperror.InsufficientStock(qty, r.AvailableQuantity())
	}
	r.CurrentQuantity -= qty
	r.LastUpdated = time.Now()
	return nil
}

// BelowReorderPoint reports whether the location should restock.
func (r *InventoryRecord) BelowReorderPoint() bool {
	return r.ReorderPoint > 0 && r.CurrentQuantity <= r.ReorderPoint
}
