package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/internal/repository"
	"github.com/WinKyaw/InventSight-sub004/pkg/apperror"
	"github.com/WinKyaw/InventSight-sub004/pkg/validator"
)

type CreateTransferInput struct {
	CompanyID   uuid.UUID              `json:"-"`
	ProductID   uuid.UUID              `json:"product_id" validate:"uuid_required"`
	ProductName string                 `json:"product_name" validate:"required,max=255"`
	ProductSKU  string                 `json:"product_sku" validate:"max=100"`
	From        model.LocationRef      `json:"from" validate:"required"`
	To          model.LocationRef      `json:"to" validate:"required"`
	Quantity    int                    `json:"quantity" validate:"required,gt=0"`
	Priority    model.TransferPriority `json:"priority"`
	Reason      string                 `json:"reason" validate:"max=500"`
	Notes       string                 `json:"notes" validate:"max=2000"`
}

type ApproveTransferInput struct {
	ApprovedQuantity int       `json:"approved_quantity" validate:"required,gt=0"`
	PermissionID     uuid.UUID `json:"permission_id" validate:"uuid_required"`
	Notes            string    `json:"notes" validate:"max=2000"`
}

type ShipTransferInput struct {
	CarrierName         string                `json:"carrier_name" validate:"required,max=200"`
	CarrierPhone        string                `json:"carrier_phone" validate:"max=20"`
	CarrierVehicle      string                `json:"carrier_vehicle" validate:"max=100"`
	TransportMethod     model.TransportMethod `json:"transport_method" validate:"required"`
	EstimatedDeliveryAt *time.Time            `json:"estimated_delivery_at,omitempty"`
}

type DeliverTransferInput struct {
	ProofOfDeliveryURL string                `json:"proof_of_delivery_url" validate:"max=500"`
	ConditionOnArrival model.ConditionStatus `json:"condition_on_arrival"`
}

type ReceiveTransferInput struct {
	ReceivedQuantity     int    `json:"received_quantity" validate:"gte=0"`
	DamagedQuantity      int    `json:"damaged_quantity" validate:"gte=0"`
	ReceiverName         string `json:"receiver_name" validate:"max=200"`
	ReceiverSignatureURL string `json:"receiver_signature_url" validate:"max=500"`
	ReceiptNotes         string `json:"receipt_notes" validate:"max=2000"`
}

// TransferService drives the transfer workflow. Every transition locks the
// transfer row, checks the edge is legal, applies the ledger deltas and the
// status change, and appends the audit event, all in one transaction.
type TransferService interface {
	Request(input CreateTransferInput, actor model.Actor) (*model.TransferRequest, error)
	Approve(id uuid.UUID, input ApproveTransferInput, actor model.Actor) (*model.TransferRequest, error)
	Reject(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error)
	MarkReady(id uuid.UUID, notes string, actor model.Actor) (*model.TransferRequest, error)
	Ship(id uuid.UUID, input ShipTransferInput, actor model.Actor) (*model.TransferRequest, error)
	Deliver(id uuid.UUID, input DeliverTransferInput, actor model.Actor) (*model.TransferRequest, error)
	Receive(id uuid.UUID, input ReceiveTransferInput, actor model.Actor) (*model.TransferRequest, error)
	Cancel(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error)
	Complete(id uuid.UUID, actor model.Actor) (*model.TransferRequest, error)
	MarkDamaged(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error)
	MarkLost(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error)

	GetByID(id uuid.UUID) (*model.TransferRequest, error)
	ListByCompany(companyID uuid.UUID, status model.TransferStatus, limit, offset int) ([]model.TransferRequest, error)
	ListByLocation(loc model.LocationRef, limit, offset int) ([]model.TransferRequest, error)
}

type transferService struct {
	db           TxManager
	transferRepo repository.TransferRepository
	ledger       LedgerService
	permissions  PermissionService
	audit        AuditService
	hub          Broadcaster
	logger       *zap.Logger
}

func NewTransferService(
	db TxManager,
	transferRepo repository.TransferRepository,
	ledger LedgerService,
	permissions PermissionService,
	audit AuditService,
	hub Broadcaster,
	logger *zap.Logger,
) TransferService {
	return &transferService{
		db:           db,
		transferRepo: transferRepo,
		ledger:       ledger,
		permissions:  permissions,
		audit:        audit,
		hub:          hub,
		logger:       logger,
	}
}

func (s *transferService) Request(input CreateTransferInput, actor model.Actor) (*model.TransferRequest, error) {
	if msg := validator.FirstErrorMessage(input); msg != "" {
		return nil, apperror.BadRequest(msg)
	}
	if input.From == input.To {
		return nil, apperror.BadRequest("source and destination locations must differ")
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}

	now := time.Now().UTC()
	transfer := &model.TransferRequest{
		CompanyID:         input.CompanyID,
		ProductID:         input.ProductID,
		ProductName:       input.ProductName,
		ProductSKU:        input.ProductSKU,
		FromLocationType:  input.From.Type,
		FromLocationID:    input.From.ID,
		ToLocationType:    input.To.Type,
		ToLocationID:      input.To.ID,
		RequestedQuantity: input.Quantity,
		Status:            model.StatusPending,
		Priority:          input.Priority,
		Reason:            input.Reason,
		Notes:             input.Notes,
		RequestedByID:     actor.UserID,
		RequestedByName:   actor.Name,
		RequestedAt:       now,
	}
	transfer.CreatedBy = actor.UserID.String()
	transfer.UpdatedBy = actor.UserID.String()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Reserving at request time means an approved transfer can never
		// fail for stock that was spent elsewhere in the meantime.
		if _, err := s.ledger.Reserve(tx, input.From, input.ProductID, input.Quantity); err != nil {
			return err
		}
		if err := s.transferRepo.Create(tx, transfer); err != nil {
			return err
		}
		return s.appendTransferAudit(tx, transfer, actor, "transfer.requested", map[string]interface{}{
			"from":               input.From.String(),
			"to":                 input.To.String(),
			"requested_quantity": input.Quantity,
			"priority":           string(input.Priority),
			"reason":             input.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcastTransfer(transfer)
	return transfer, nil
}

func (s *transferService) Approve(id uuid.UUID, input ApproveTransferInput, actor model.Actor) (*model.TransferRequest, error) {
	if msg := validator.FirstErrorMessage(input); msg != "" {
		return nil, apperror.BadRequest(msg)
	}

	var transfer *model.TransferRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if err := s.checkTransition(transfer, model.StatusApproved); err != nil {
			return err
		}
		if transfer.RequestedByID == actor.UserID {
			return apperror.BadRequest("a transfer cannot be approved by its requester")
		}
		if input.ApprovedQuantity > transfer.RequestedQuantity {
			return apperror.InvalidQuantity("approved quantity cannot exceed requested quantity")
		}

		// The approval itself is what burns the one-time grant, so both
		// either commit or roll back together.
		permission, err := s.permissions.ConsumeInTx(tx, input.PermissionID, actor)
		if err != nil {
			return err
		}
		if permission.PermissionType != model.PermissionTransferApproval {
			return apperror.PermissionNotFound()
		}

		// Approving less than requested frees the surplus immediately.
		if surplus := transfer.RequestedQuantity - input.ApprovedQuantity; surplus > 0 {
			if _, err := s.ledger.Release(tx, transfer.FromLocation(), transfer.ProductID, surplus); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		approvedBy := actor.UserID
		transfer.Status = model.StatusApproved
		transfer.ApprovedQuantity = &input.ApprovedQuantity
		transfer.ApprovedByID = &approvedBy
		transfer.ApprovedByName = actor.Name
		transfer.ApprovedAt = &now
		if input.Notes != "" {
			transfer.Notes = input.Notes
		}
		transfer.UpdatedBy = actor.UserID.String()
		if err := s.transferRepo.Save(tx, transfer); err != nil {
			return err
		}
		return s.appendTransferAudit(tx, transfer, actor, "transfer.approved", map[string]interface{}{
			"approved_quantity":  input.ApprovedQuantity,
			"requested_quantity": transfer.RequestedQuantity,
			"permission_id":      input.PermissionID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcastTransfer(transfer)
	return transfer, nil
}

func (s *transferService) Reject(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error) {
	return s.releaseAndClose(id, model.StatusRejected, "transfer.rejected", reason, actor)
}

func (s *transferService) Cancel(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error) {
	return s.releaseAndClose(id, model.StatusCancelled, "transfer.cancelled", reason, actor)
}

// releaseAndClose handles the two early exits that hand the reservation
// back: rejection of a pending request and cancellation before shipping.
func (s *transferService) releaseAndClose(id uuid.UUID, next model.TransferStatus, action, reason string, actor model.Actor) (*model.TransferRequest, error) {
	var transfer *model.TransferRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if err := s.checkTransition(transfer, next); err != nil {
			return err
		}

		if held := transfer.OutstandingReservation(); held > 0 {
			if _, err := s.ledger.Release(tx, transfer.FromLocation(), transfer.ProductID, held); err != nil {
				return err
			}
		}

		transfer.Status = next
		if reason != "" {
			transfer.Reason = reason
		}
		transfer.UpdatedBy = actor.UserID.String()
		if err := s.transferRepo.Save(tx, transfer); err != nil {
			return err
		}
		return s.appendTransferAudit(tx, transfer, actor, action, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcastTransfer(transfer)
	return transfer, nil
}

func (s *transferService) MarkReady(id uuid.UUID, notes string, actor model.Actor) (*model.TransferRequest, error) {
	return s.advance(id, model.StatusPreparing, "transfer.preparing", actor, func(t *model.TransferRequest) error {
		if notes != "" {
			t.Notes = notes
		}
		return nil
	}, nil)
}

func (s *transferService) Ship(id uuid.UUID, input ShipTransferInput, actor model.Actor) (*model.TransferRequest, error) {
	if msg := validator.FirstErrorMessage(input); msg != "" {
		return nil, apperror.BadRequest(msg)
	}
	return s.advance(id, model.StatusInTransit, "transfer.shipped", actor, func(t *model.TransferRequest) error {
		now := time.Now().UTC()
		t.CarrierName = input.CarrierName
		t.CarrierPhone = input.CarrierPhone
		t.CarrierVehicle = input.CarrierVehicle
		t.TransportMethod = input.TransportMethod
		t.ShippedAt = &now
		t.EstimatedDeliveryAt = input.EstimatedDeliveryAt
		return nil
	}, map[string]interface{}{
		"carrier_name":     input.CarrierName,
		"transport_method": string(input.TransportMethod),
	})
}

func (s *transferService) Deliver(id uuid.UUID, input DeliverTransferInput, actor model.Actor) (*model.TransferRequest, error) {
	if msg := validator.FirstErrorMessage(input); msg != "" {
		return nil, apperror.BadRequest(msg)
	}
	return s.advance(id, model.StatusDelivered, "transfer.delivered", actor, func(t *model.TransferRequest) error {
		now := time.Now().UTC()
		t.DeliveredAt = &now
		t.ProofOfDeliveryURL = input.ProofOfDeliveryURL
		if input.ConditionOnArrival != "" {
			t.ConditionOnArrival = input.ConditionOnArrival
		} else {
			t.ConditionOnArrival = model.ConditionGood
		}
		return nil
	}, map[string]interface{}{
		"condition_on_arrival": string(input.ConditionOnArrival),
	})
}

// advance performs a transition that only touches the transfer row, with no
// ledger movement.
func (s *transferService) advance(
	id uuid.UUID,
	next model.TransferStatus,
	action string,
	actor model.Actor,
	mutate func(*model.TransferRequest) error,
	details map[string]interface{},
) (*model.TransferRequest, error) {
	var transfer *model.TransferRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if err := s.checkTransition(transfer, next); err != nil {
			return err
		}
		transfer.Status = next
		if mutate != nil {
			if err := mutate(transfer); err != nil {
				return err
			}
		}
		transfer.UpdatedBy = actor.UserID.String()
		if err := s.transferRepo.Save(tx, transfer); err != nil {
			return err
		}
		return s.appendTransferAudit(tx, transfer, actor, action, details)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastTransfer(transfer)
	return transfer, nil
}

func (s *transferService) Receive(id uuid.UUID, input ReceiveTransferInput, actor model.Actor) (*model.TransferRequest, error) {
	if msg := validator.FirstErrorMessage(input); msg != "" {
		return nil, apperror.BadRequest(msg)
	}

	var transfer *model.TransferRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = s.lockTransfer(tx, id)
		if err != nil {
			return err
		}

		approved := transfer.RequestedQuantity
		if transfer.ApprovedQuantity != nil {
			approved = *transfer.ApprovedQuantity
		}
		next := model.StatusReceived
		if input.ReceivedQuantity < approved {
			next = model.StatusPartiallyReceived
		}
		if err := s.checkTransition(transfer, next); err != nil {
			return err
		}
		if input.ReceivedQuantity < 0 || input.DamagedQuantity < 0 {
			return apperror.InvalidQuantity("received and damaged quantities cannot be negative")
		}
		if input.ReceivedQuantity+input.DamagedQuantity > approved {
			return apperror.QuantityMismatch(input.ReceivedQuantity, input.DamagedQuantity, approved)
		}

		from := transfer.FromLocation()
		// Free the reservation before debiting so reserved units never
		// block their own withdrawal.
		if approved > 0 {
			if _, err := s.ledger.Release(tx, from, transfer.ProductID, approved); err != nil {
				return err
			}
			if _, err := s.ledger.RemoveStock(tx, from, transfer.ProductID, approved); err != nil {
				return err
			}
		}
		if input.ReceivedQuantity > 0 {
			if _, err := s.ledger.AddStock(tx, transfer.ToLocation(), transfer.ProductID, input.ReceivedQuantity, actor.Name); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		receiverID := actor.UserID
		transfer.Status = next
		transfer.ReceivedQuantity = &input.ReceivedQuantity
		transfer.DamagedQuantity = &input.DamagedQuantity
		transfer.ReceiverUserID = &receiverID
		transfer.ReceiverName = actor.Name
		if input.ReceiverName != "" {
			transfer.ReceiverName = input.ReceiverName
		}
		transfer.ReceiverSignatureURL = input.ReceiverSignatureURL
		transfer.ReceivedAt = &now
		transfer.ReceiptNotes = input.ReceiptNotes
		transfer.UpdatedBy = actor.UserID.String()
		if err := s.transferRepo.Save(tx, transfer); err != nil {
			return err
		}
		return s.appendTransferAudit(tx, transfer, actor, "transfer.received", map[string]interface{}{
			"approved_quantity": approved,
			"received_quantity": input.ReceivedQuantity,
			"damaged_quantity":  input.DamagedQuantity,
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcastTransfer(transfer)
	return transfer, nil
}

func (s *transferService) Complete(id uuid.UUID, actor model.Actor) (*model.TransferRequest, error) {
	// Completing an already completed transfer is a no-op, not an error.
	if existing, err := s.transferRepo.FindByID(id); err == nil && existing.Status == model.StatusCompleted {
		return existing, nil
	}
	return s.advance(id, model.StatusCompleted, "transfer.completed", actor, func(t *model.TransferRequest) error {
		now := time.Now().UTC()
		t.CompletedAt = &now
		return nil
	}, nil)
}

func (s *transferService) MarkDamaged(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error) {
	return s.writeOff(id, model.StatusDamaged, "transfer.damaged", reason, actor)
}

func (s *transferService) MarkLost(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error) {
	return s.writeOff(id, model.StatusLost, "transfer.lost", reason, actor)
}

// writeOff closes a shipment that never arrives intact. The units left the
// source for good, so the reservation is consumed and the stock debited;
// nothing is credited at the destination.
func (s *transferService) writeOff(id uuid.UUID, next model.TransferStatus, action, reason string, actor model.Actor) (*model.TransferRequest, error) {
	var transfer *model.TransferRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = s.lockTransfer(tx, id)
		if err != nil {
			return err
		}
		if err := s.checkTransition(transfer, next); err != nil {
			return err
		}

		held := transfer.OutstandingReservation()
		if held > 0 {
			from := transfer.FromLocation()
			if _, err := s.ledger.Release(tx, from, transfer.ProductID, held); err != nil {
				return err
			}
			if _, err := s.ledger.RemoveStock(tx, from, transfer.ProductID, held); err != nil {
				return err
			}
		}

		transfer.Status = next
		if reason != "" {
			transfer.Reason = reason
		}
		transfer.UpdatedBy = actor.UserID.String()
		if err := s.transferRepo.Save(tx, transfer); err != nil {
			return err
		}
		return s.appendTransferAudit(tx, transfer, actor, action, map[string]interface{}{
			"reason":      reason,
			"written_off": held,
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcastTransfer(transfer)
	return transfer, nil
}

func (s *transferService) GetByID(id uuid.UUID) (*model.TransferRequest, error) {
	transfer, err := s.transferRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("transfer request")
	}
	return transfer, err
}

func (s *transferService) ListByCompany(companyID uuid.UUID, status model.TransferStatus, limit, offset int) ([]model.TransferRequest, error) {
	return s.transferRepo.FindByCompany(companyID, status, normalizeLimit(limit), offset)
}

func (s *transferService) ListByLocation(loc model.LocationRef, limit, offset int) ([]model.TransferRequest, error) {
	return s.transferRepo.FindByLocation(loc, normalizeLimit(limit), offset)
}

func (s *transferService) lockTransfer(tx *gorm.DB, id uuid.UUID) (*model.TransferRequest, error) {
	transfer, err := s.transferRepo.FindForUpdate(tx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("transfer request")
	}
	return transfer, err
}

func (s *transferService) checkTransition(t *model.TransferRequest, next model.TransferStatus) error {
	if !t.Status.CanTransitionTo(next) {
		return apperror.InvalidStateTransition(string(t.Status), string(next))
	}
	return nil
}

func (s *transferService) appendTransferAudit(tx *gorm.DB, t *model.TransferRequest, actor model.Actor, action string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["status"] = string(t.Status)
	details["product_id"] = t.ProductID.String()
	_, err := s.audit.Append(tx, AuditEntry{
		TenantID:   t.CompanyID,
		Actor:      actor,
		Action:     action,
		EntityType: "transfer_request",
		EntityID:   t.ID.String(),
		Details:    details,
	})
	return err
}

func (s *transferService) broadcastTransfer(t *model.TransferRequest) {
	if s.hub == nil || t == nil {
		return
	}
	s.hub.BroadcastJSON("transfer_update", map[string]interface{}{
		"transfer_id": t.ID,
		"status":      t.Status,
		"product_id":  t.ProductID,
		"from":        t.FromLocation().String(),
		"to":          t.ToLocation().String(),
	})
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
