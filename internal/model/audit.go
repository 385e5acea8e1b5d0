package model

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenesisHash anchors the first event of every tenant chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Actor is the audit context every mutating call must carry. There is no
// compiled-in default actor.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
}

// AuditEvent is one link of a tenant's append-only, hash-chained history.
// Rows are immutable after insert: no updates, no deletes. Sequence is
// assigned under the per-tenant append lock and gives total order.
type AuditEvent struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_audit_tenant_seq" json:"tenant_id"`
	Sequence int64     `gorm:"not null;uniqueIndex:idx_audit_tenant_seq" json:"sequence"`

	// EventAt is truncated to microseconds so hashing is byte-stable
	// across the postgres timestamp round trip.
	EventAt time.Time `gorm:"not null" json:"event_at"`

	Actor   string     `gorm:"type:varchar(200);not null" json:"actor"`
	ActorID *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	Action  string     `gorm:"type:varchar(100);not null" json:"action"`

	EntityType string `gorm:"type:varchar(100)" json:"entity_type"`
	EntityID   string `gorm:"type:varchar(100)" json:"entity_id"`

	Details datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`

	PrevHash string `gorm:"type:varchar(64);not null" json:"prev_hash"`
	Hash     string `gorm:"type:varchar(64);not null" json:"hash"`

	CreatedAt time.Time `json:"created_at"`
}

func (e *AuditEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// ComputeHash digests PrevHash plus a canonical serialization of the event
// fields. Timestamps are hashed as unix microseconds and Details as the
// exact stored JSON bytes, so recomputation over persisted rows is stable.
func (e *AuditEvent) ComputeHash() string {
	h := sha256.New()
	io.WriteString(h, e.PrevHash)
	io.WriteString(h, e.TenantID.String())
	io.WriteString(h, strconv.FormatInt(e.Sequence, 10))
	io.WriteString(h, strconv.FormatInt(e.EventAt.UTC().UnixMicro(), 10))
	io.WriteString(h, e.Actor)
	if e.ActorID != nil {
		io.WriteString(h, e.ActorID.String())
	}
	io.WriteString(h, e.Action)
	io.WriteString(h, e.EntityType)
	io.WriteString(h, e.EntityID)
	h.Write(e.Details)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyChain walks events (which must be sequence-ordered) and recomputes
// every hash, anchored at prevHash. It returns the index of the first event
// whose recorded linkage or hash does not match, or (-1, true) when the
// whole range is intact. Any mismatch taints every later event as well.
func VerifyChain(events []AuditEvent, prevHash string) (int, bool) {
	for i := range events {
		e := &events[i]
		if e.PrevHash != prevHash || e.Hash != e.ComputeHash() {
			return i, false
		}
		prevHash = e.Hash
	}
	return -1, true
}
