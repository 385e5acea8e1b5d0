package model

import (
	"time"

	"github.com/google/uuid"
)

// PermissionType classifies what a one-time grant allows.
type PermissionType string

const (
	PermissionTransferApproval    PermissionType = "TRANSFER_APPROVAL"
	PermissionInventoryAdjustment PermissionType = "INVENTORY_ADJUSTMENT"
	PermissionEditItem            PermissionType = "EDIT_ITEM"
	PermissionDeleteItem          PermissionType = "DELETE_ITEM"
)

// KnownPermissionTypes lists every grantable type.
var KnownPermissionTypes = []PermissionType{
	PermissionTransferApproval,
	PermissionInventoryAdjustment,
	PermissionEditItem,
	PermissionDeleteItem,
}

// IsKnown reports whether the type is grantable.
func (p PermissionType) IsKnown() bool {
	for _, t := range KnownPermissionTypes {
		if t == p {
			return true
		}
	}
	return false
}

// OneTimePermission is a temporary grant to a user. It expires after one
// use OR the TTL, whichever comes first.
type OneTimePermission struct {
	BaseModel
	CompanyID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	GrantedToUserID uuid.UUID      `gorm:"type:uuid;not null;index" json:"granted_to_user_id"`
	GrantedByUserID uuid.UUID      `gorm:"type:uuid;not null" json:"granted_by_user_id"`
	PermissionType  PermissionType `gorm:"type:varchar(50);not null" json:"permission_type"`

	GrantedAt time.Time  `gorm:"not null" json:"granted_at"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	IsUsed    bool       `gorm:"not null;default:false" json:"is_used"`
	IsExpired bool       `gorm:"not null;default:false" json:"is_expired"`

	// Optional store scope for store-bound grants
	StoreID *uuid.UUID `gorm:"type:uuid" json:"store_id,omitempty"`
}

// IsValid reports whether the grant can still be consumed at now:
// not used, not flagged expired, and still inside its time window.
func (p *OneTimePermission) IsValid(now time.Time) bool {
	return !p.IsUsed && !p.IsExpired && now.Before(p.ExpiresAt)
}

// ShouldExpire reports whether the sweep job should flag this grant.
// Purely observational; Consume re-checks expiresAt directly.
func (p *OneTimePermission) ShouldExpire(now time.Time) bool {
	return !p.IsUsed && !p.IsExpired && now.After(p.ExpiresAt)
}
