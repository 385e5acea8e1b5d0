package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/internal/repository"
	"github.com/WinKyaw/InventSight-sub004/pkg/apperror"
)

// Broadcaster pushes a named event to connected websocket clients.
type Broadcaster interface {
	BroadcastJSON(event string, payload interface{})
}

// Availability is the read-side view of one stock record.
type Availability struct {
	Location          model.LocationRef `json:"location"`
	ProductID         uuid.UUID         `json:"product_id"`
	CurrentQuantity   int               `json:"current_quantity"`
	ReservedQuantity  int               `json:"reserved_quantity"`
	AvailableQuantity int               `json:"available_quantity"`
	BelowReorderPoint bool              `json:"below_reorder_point"`
	LastUpdated       *time.Time        `json:"last_updated,omitempty"`
}

type StockAdjustmentInput struct {
	CompanyID uuid.UUID         `json:"-"`
	Location  model.LocationRef `json:"location" validate:"required"`
	ProductID uuid.UUID         `json:"product_id" validate:"uuid_required"`
	Quantity  int               `json:"quantity" validate:"required,gt=0"`
	Reason    string            `json:"reason" validate:"max=500"`
}

// LedgerService owns the stock counters. The tx-scoped mutators are the
// only code that touches counter arithmetic; the transfer workflow and the
// audited restock/withdrawal entry points compose them inside their own
// transactions.
type LedgerService interface {
	Reserve(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int) (*model.InventoryRecord, error)
	Release(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int) (*model.InventoryRecord, error)
	AddStock(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int, actorName string) (*model.InventoryRecord, error)
	RemoveStock(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int) (*model.InventoryRecord, error)

	RecordRestock(input StockAdjustmentInput, actor model.Actor) (*model.InventoryRecord, error)
	RecordWithdrawal(input StockAdjustmentInput, actor model.Actor) (*model.InventoryRecord, error)

	GetAvailability(loc model.LocationRef, productID uuid.UUID) (*Availability, error)
	ListLocationStock(loc model.LocationRef) ([]model.InventoryRecord, error)
}

type ledgerService struct {
	db            TxManager
	inventoryRepo repository.InventoryRepository
	audit         AuditService
	hub           Broadcaster
	logger        *zap.Logger
}

func NewLedgerService(
	db TxManager,
	inventoryRepo repository.InventoryRepository,
	audit AuditService,
	hub Broadcaster,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		db:            db,
		inventoryRepo: inventoryRepo,
		audit:         audit,
		hub:           hub,
		logger:        logger,
	}
}

func (s *ledgerService) Reserve(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int) (*model.InventoryRecord, error) {
	record, err := s.inventoryRepo.FindForUpdate(tx, loc, productID)
	if err == gorm.ErrRecordNotFound {
		// No record means zero stock, which reads the same as an
		// insufficient balance.
		return nil, apperror.InsufficientStock(qty, 0)
	}
	if err != nil {
		return nil, err
	}
	if err := record.Reserve(qty); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Save(tx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ledgerService) Release(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int) (*model.InventoryRecord, error) {
	record, err := s.inventoryRepo.FindForUpdate(tx, loc, productID)
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("inventory record")
	}
	if err != nil {
		return nil, err
	}
	if err := record.Release(qty); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Save(tx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ledgerService) AddStock(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int, actorName string) (*model.InventoryRecord, error) {
	record, err := s.inventoryRepo.FindOrCreateForUpdate(tx, loc, productID, actorName)
	if err != nil {
		return nil, err
	}
	if err := record.AddStock(qty); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Save(tx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ledgerService) RemoveStock(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, qty int) (*model.InventoryRecord, error) {
	record, err := s.inventoryRepo.FindForUpdate(tx, loc, productID)
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.InsufficientStock(qty, 0)
	}
	if err != nil {
		return nil, err
	}
	if err := record.RemoveStock(qty); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Save(tx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// RecordRestock is the audited entry point for stock arriving outside the
// transfer workflow (deliveries from suppliers, count corrections upward).
func (s *ledgerService) RecordRestock(input StockAdjustmentInput, actor model.Actor) (*model.InventoryRecord, error) {
	var record *model.InventoryRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.AddStock(tx, input.Location, input.ProductID, input.Quantity, actor.Name)
		if err != nil {
			return err
		}
		_, err = s.audit.Append(tx, AuditEntry{
			TenantID:   input.CompanyID,
			Actor:      actor,
			Action:     "inventory.restock",
			EntityType: "inventory_record",
			EntityID:   record.ID.String(),
			Details: map[string]interface{}{
				"location":       input.Location.String(),
				"product_id":     input.ProductID.String(),
				"quantity":       input.Quantity,
				"reason":         input.Reason,
				"current_after":  record.CurrentQuantity,
				"reserved_after": record.ReservedQuantity,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcastStock(record)
	return record, nil
}

// RecordWithdrawal is the audited entry point for stock leaving outside the
// transfer workflow (shrinkage, write-offs, count corrections downward).
func (s *ledgerService) RecordWithdrawal(input StockAdjustmentInput, actor model.Actor) (*model.InventoryRecord, error) {
	var record *model.InventoryRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.RemoveStock(tx, input.Location, input.ProductID, input.Quantity)
		if err != nil {
			return err
		}
		_, err = s.audit.Append(tx, AuditEntry{
			TenantID:   input.CompanyID,
			Actor:      actor,
			Action:     "inventory.withdrawal",
			EntityType: "inventory_record",
			EntityID:   record.ID.String(),
			Details: map[string]interface{}{
				"location":       input.Location.String(),
				"product_id":     input.ProductID.String(),
				"quantity":       input.Quantity,
				"reason":         input.Reason,
				"current_after":  record.CurrentQuantity,
				"reserved_after": record.ReservedQuantity,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if record.BelowReorderPoint() {
		s.logger.Warn("stock below reorder point",
			zap.String("location", input.Location.String()),
			zap.String("product_id", input.ProductID.String()),
			zap.Int("current_quantity", record.CurrentQuantity),
			zap.Int("reorder_point", record.ReorderPoint),
		)
	}
	s.broadcastStock(record)
	return record, nil
}

func (s *ledgerService) GetAvailability(loc model.LocationRef, productID uuid.UUID) (*Availability, error) {
	record, err := s.inventoryRepo.Find(loc, productID)
	if err == gorm.ErrRecordNotFound {
		// A key that never held stock reads as zero, not as an error.
		return &Availability{Location: loc, ProductID: productID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Availability{
		Location:          loc,
		ProductID:         productID,
		CurrentQuantity:   record.CurrentQuantity,
		ReservedQuantity:  record.ReservedQuantity,
		AvailableQuantity: record.AvailableQuantity(),
		BelowReorderPoint: record.BelowReorderPoint(),
		LastUpdated:       &record.LastUpdated,
	}, nil
}

func (s *ledgerService) ListLocationStock(loc model.LocationRef) ([]model.InventoryRecord, error) {
	return s.inventoryRepo.FindByLocation(loc)
}

func (s *ledgerService) broadcastStock(record *model.InventoryRecord) {
	if s.hub == nil || record == nil {
		return
	}
	s.hub.BroadcastJSON("stock_update", map[string]interface{}{
		"location_type":      record.LocationType,
		"location_id":        record.LocationID,
		"product_id":         record.ProductID,
		"current_quantity":   record.CurrentQuantity,
		"reserved_quantity":  record.ReservedQuantity,
		"available_quantity": record.AvailableQuantity(),
	})
}
