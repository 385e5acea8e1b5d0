package service

import (
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
)

// fakeTx serializes transaction bodies with one mutex, standing in for the
// row locks the real store takes. Callers that would block on a locked row
// instead queue on the mutex, which preserves the serialization the
// services are written against.
type fakeTx struct {
	mu sync.Mutex
}

func (f *fakeTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fc(nil)
}

func invKey(loc model.LocationRef, productID uuid.UUID) string {
	return loc.String() + "/" + productID.String()
}

type fakeInventoryRepo struct {
	mu      sync.Mutex
	records map[string]*model.InventoryRecord
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{records: make(map[string]*model.InventoryRecord)}
}

func (r *fakeInventoryRepo) seed(loc model.LocationRef, productID uuid.UUID, current int) *model.InventoryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := &model.InventoryRecord{
		LocationType:    loc.Type,
		LocationID:      loc.ID,
		ProductID:       productID,
		CurrentQuantity: current,
	}
	rec.ID = uuid.New()
	r.records[invKey(loc, productID)] = rec
	return rec
}

func (r *fakeInventoryRepo) FindForUpdate(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID) (*model.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[invKey(loc, productID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *fakeInventoryRepo) FindOrCreateForUpdate(tx *gorm.DB, loc model.LocationRef, productID uuid.UUID, createdBy string) (*model.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := invKey(loc, productID)
	if rec, ok := r.records[key]; ok {
		return rec, nil
	}
	rec := &model.InventoryRecord{
		LocationType: loc.Type,
		LocationID:   loc.ID,
		ProductID:    productID,
	}
	rec.ID = uuid.New()
	rec.CreatedBy = createdBy
	r.records[key] = rec
	return rec, nil
}

func (r *fakeInventoryRepo) Save(tx *gorm.DB, record *model.InventoryRecord) error {
	return nil
}

func (r *fakeInventoryRepo) Find(loc model.LocationRef, productID uuid.UUID) (*model.InventoryRecord, error) {
	return r.FindForUpdate(nil, loc, productID)
}

func (r *fakeInventoryRepo) FindByLocation(loc model.LocationRef) ([]model.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.InventoryRecord
	for _, rec := range r.records {
		if rec.LocationType == loc.Type && rec.LocationID == loc.ID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]*model.TransferRequest
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uuid.UUID]*model.TransferRequest)}
}

func (r *fakeTransferRepo) Create(tx *gorm.DB, transfer *model.TransferRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}
	r.transfers[transfer.ID] = transfer
	return nil
}

func (r *fakeTransferRepo) Save(tx *gorm.DB, transfer *model.TransferRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[transfer.ID] = transfer
	return nil
}

func (r *fakeTransferRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.TransferRequest, error) {
	return r.FindByID(id)
}

func (r *fakeTransferRepo) FindByID(id uuid.UUID) (*model.TransferRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	transfer, ok := r.transfers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return transfer, nil
}

func (r *fakeTransferRepo) FindByCompany(companyID uuid.UUID, status model.TransferStatus, limit, offset int) ([]model.TransferRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TransferRequest
	for _, transfer := range r.transfers {
		if transfer.CompanyID != companyID {
			continue
		}
		if status != "" && transfer.Status != status {
			continue
		}
		out = append(out, *transfer)
	}
	return out, nil
}

func (r *fakeTransferRepo) FindByLocation(loc model.LocationRef, limit, offset int) ([]model.TransferRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TransferRequest
	for _, transfer := range r.transfers {
		if transfer.FromLocation() == loc || transfer.ToLocation() == loc {
			out = append(out, *transfer)
		}
	}
	return out, nil
}

type fakePermissionRepo struct {
	mu          sync.Mutex
	permissions map[uuid.UUID]*model.OneTimePermission
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{permissions: make(map[uuid.UUID]*model.OneTimePermission)}
}

func (r *fakePermissionRepo) Create(tx *gorm.DB, permission *model.OneTimePermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if permission.ID == uuid.Nil {
		permission.ID = uuid.New()
	}
	r.permissions[permission.ID] = permission
	return nil
}

func (r *fakePermissionRepo) FindByID(id uuid.UUID) (*model.OneTimePermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	permission, ok := r.permissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *permission
	return &cp, nil
}

// ConsumeIfValid mirrors the conditional-update semantics: the check and the
// flag flip happen under one lock, so exactly one caller wins.
func (r *fakePermissionRepo) ConsumeIfValid(tx *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	permission, ok := r.permissions[id]
	if !ok {
		return false, nil
	}
	if permission.IsUsed || permission.IsExpired || !now.Before(permission.ExpiresAt) {
		return false, nil
	}
	permission.IsUsed = true
	permission.UsedAt = &now
	return true, nil
}

func (r *fakePermissionRepo) FindActiveForUser(userID uuid.UUID, permissionType model.PermissionType, now time.Time) ([]model.OneTimePermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OneTimePermission
	for _, p := range r.permissions {
		if p.GrantedToUserID != userID || !p.IsValid(now) {
			continue
		}
		if permissionType != "" && p.PermissionType != permissionType {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePermissionRepo) MarkExpired(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.permissions {
		if p.ShouldExpire(now) {
			p.IsExpired = true
			count++
		}
	}
	return count, nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	chains map[uuid.UUID][]model.AuditEvent
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{chains: make(map[uuid.UUID][]model.AuditEvent)}
}

func (r *fakeAuditRepo) Create(tx *gorm.DB, event *model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.chains[event.TenantID] = append(r.chains[event.TenantID], *event)
	return nil
}

func (r *fakeAuditRepo) LastForUpdate(tx *gorm.DB, tenantID uuid.UUID) (*model.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chain := r.chains[tenantID]
	if len(chain) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	last := chain[len(chain)-1]
	return &last, nil
}

func (r *fakeAuditRepo) FindBySequence(tenantID uuid.UUID, sequence int64) (*model.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.chains[tenantID] {
		if e.Sequence == sequence {
			cp := e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAuditRepo) FindRange(tenantID uuid.UUID, fromSeq, toSeq int64) ([]model.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditEvent
	for _, e := range r.chains[tenantID] {
		if e.Sequence >= fromSeq && e.Sequence <= toSeq {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) FindByTenant(tenantID uuid.UUID, limit, offset int) ([]model.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditEvent(nil), r.chains[tenantID]...), nil
}

func (r *fakeAuditRepo) FindByEntity(entityType, entityID string, limit, offset int) ([]model.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditEvent
	for _, chain := range r.chains {
		for _, e := range chain {
			if e.EntityType == entityType && e.EntityID == entityID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) MaxSequence(tenantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chain := r.chains[tenantID]
	if len(chain) == 0 {
		return 0, nil
	}
	return chain[len(chain)-1].Sequence, nil
}

// tamper rewrites a stored event in place, bypassing the append-only
// surface, to simulate direct database manipulation.
func (r *fakeAuditRepo) tamper(tenantID uuid.UUID, sequence int64, mutate func(*model.AuditEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chain := r.chains[tenantID]
	for i := range chain {
		if chain[i].Sequence == sequence {
			mutate(&chain[i])
			return
		}
	}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *fakeBroadcaster) BroadcastJSON(event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == event {
			n++
		}
	}
	return n
}
