package model

import (
	"time"

	"github.com/google/uuid"
)

// TransferStatus is the workflow state of a transfer request.
type TransferStatus string

const (
	StatusPending           TransferStatus = "PENDING"
	StatusApproved          TransferStatus = "APPROVED"
	StatusPreparing         TransferStatus = "PREPARING"
	StatusInTransit         TransferStatus = "IN_TRANSIT"
	StatusDelivered         TransferStatus = "DELIVERED"
	StatusReceived          TransferStatus = "RECEIVED"
	StatusPartiallyReceived TransferStatus = "PARTIALLY_RECEIVED"
	StatusCompleted         TransferStatus = "COMPLETED"
	StatusRejected          TransferStatus = "REJECTED"
	StatusCancelled         TransferStatus = "CANCELLED"
	StatusDamaged           TransferStatus = "DAMAGED"
	StatusLost              TransferStatus = "LOST"
)

// transferTransitions is the single source of truth for legal workflow
// edges. Statuses absent from the map are terminal.
var transferTransitions = map[TransferStatus][]TransferStatus{
	StatusPending:           {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:          {StatusPreparing, StatusInTransit, StatusCancelled},
	StatusPreparing:         {StatusInTransit, StatusCancelled},
	StatusInTransit:         {StatusDelivered, StatusDamaged, StatusLost},
	StatusDelivered:         {StatusReceived, StatusPartiallyReceived, StatusDamaged, StatusLost},
	StatusReceived:          {StatusCompleted},
	StatusPartiallyReceived: {StatusCompleted},
}

// CanTransitionTo reports whether moving to next is a legal edge.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s TransferStatus) IsTerminal() bool {
	_, ok := transferTransitions[s]
	return !ok
}

// TransferPriority orders fulfilment urgency.
type TransferPriority string

const (
	PriorityLow    TransferPriority = "LOW"
	PriorityMedium TransferPriority = "MEDIUM"
	PriorityHigh   TransferPriority = "HIGH"
	PriorityUrgent TransferPriority = "URGENT"
)

// TransportMethod describes how a shipment moves.
type TransportMethod string

const (
	TransportCompanyVehicle TransportMethod = "COMPANY_VEHICLE"
	TransportCourier        TransportMethod = "COURIER"
	TransportThirdParty     TransportMethod = "THIRD_PARTY"
	TransportPickup         TransportMethod = "PICKUP"
)

// ConditionStatus records the state of goods on arrival.
type ConditionStatus string

const (
	ConditionGood    ConditionStatus = "GOOD"
	ConditionDamaged ConditionStatus = "DAMAGED"
	ConditionPartial ConditionStatus = "PARTIAL"
)

// TransferRequest tracks one movement of a quantity of one product between
// two locations. It stores plain identifiers only; warehouse/store/product
// details are resolved through the external catalog at the point of use.
// Rows are never physically deleted; terminal states are retained.
type TransferRequest struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255)" json:"product_name"`
	ProductSKU  string    `gorm:"type:varchar(100)" json:"product_sku"`

	FromLocationType LocationType `gorm:"type:varchar(20);not null;index:idx_transfer_from" json:"from_location_type"`
	FromLocationID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_transfer_from" json:"from_location_id"`
	ToLocationType   LocationType `gorm:"type:varchar(20);not null;index:idx_transfer_to" json:"to_location_type"`
	ToLocationID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_transfer_to" json:"to_location_id"`

	RequestedQuantity int  `gorm:"not null" json:"requested_quantity"`
	ApprovedQuantity  *int `json:"approved_quantity,omitempty"`
	ReceivedQuantity  *int `json:"received_quantity,omitempty"`
	DamagedQuantity   *int `json:"damaged_quantity,omitempty"`

	Status   TransferStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Priority TransferPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Reason   string           `gorm:"type:text" json:"reason"`
	Notes    string           `gorm:"type:text" json:"notes"`

	RequestedByID   uuid.UUID  `gorm:"type:uuid;not null" json:"requested_by_id"`
	RequestedByName string     `gorm:"type:varchar(200)" json:"requested_by_name"`
	RequestedAt     time.Time  `json:"requested_at"`
	ApprovedByID    *uuid.UUID `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	ApprovedByName  string     `gorm:"type:varchar(200)" json:"approved_by_name,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`

	// Carrier and delivery tracking
	CarrierName         string          `gorm:"type:varchar(200)" json:"carrier_name,omitempty"`
	CarrierPhone        string          `gorm:"type:varchar(20)" json:"carrier_phone,omitempty"`
	CarrierVehicle      string          `gorm:"type:varchar(100)" json:"carrier_vehicle,omitempty"`
	TransportMethod     TransportMethod `gorm:"type:varchar(30)" json:"transport_method,omitempty"`
	ShippedAt           *time.Time      `json:"shipped_at,omitempty"`
	EstimatedDeliveryAt *time.Time      `json:"estimated_delivery_at,omitempty"`
	DeliveredAt         *time.Time      `json:"delivered_at,omitempty"`
	ProofOfDeliveryURL  string          `gorm:"type:varchar(500)" json:"proof_of_delivery_url,omitempty"`
	ConditionOnArrival  ConditionStatus `gorm:"type:varchar(20)" json:"condition_on_arrival,omitempty"`

	// Receipt tracking
	ReceiverUserID       *uuid.UUID `gorm:"type:uuid" json:"receiver_user_id,omitempty"`
	ReceiverName         string     `gorm:"type:varchar(200)" json:"receiver_name,omitempty"`
	ReceiverSignatureURL string     `gorm:"type:varchar(500)" json:"receiver_signature_url,omitempty"`
	ReceivedAt           *time.Time `json:"received_at,omitempty"`
	ReceiptNotes         string     `gorm:"type:text" json:"receipt_notes,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// FromLocation returns the source location reference.
func (t *TransferRequest) FromLocation() LocationRef {
	return LocationRef{Type: t.FromLocationType, ID: t.FromLocationID}
}

// ToLocation returns the destination location reference.
func (t *TransferRequest) ToLocation() LocationRef {
	return LocationRef{Type: t.ToLocationType, ID: t.ToLocationID}
}

// OutstandingReservation is the number of units still held at the source for
// this request: the full requested quantity until approval trims it, zero
// once the reservation is consumed or released by a terminal transition.
func (t *TransferRequest) OutstandingReservation() int {
	switch t.Status {
	case StatusPending:
		return t.RequestedQuantity
	case StatusApproved, StatusPreparing, StatusInTransit, StatusDelivered:
		if t.ApprovedQuantity != nil {
			return *t.ApprovedQuantity
		}
		return t.RequestedQuantity
	default:
		return 0
	}
}
