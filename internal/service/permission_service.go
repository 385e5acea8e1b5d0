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

type GrantPermissionInput struct {
	CompanyID       uuid.UUID            `json:"-"`
	GrantedToUserID uuid.UUID            `json:"granted_to_user_id" validate:"uuid_required"`
	PermissionType  model.PermissionType `json:"permission_type" validate:"required"`
	StoreID         *uuid.UUID           `json:"store_id,omitempty"`
	TTL             time.Duration        `json:"-"`
}

type PermissionService interface {
	Grant(input GrantPermissionInput, actor model.Actor) (*model.OneTimePermission, error)
	// Consume burns the grant. Exactly one of N concurrent callers
	// succeeds; the rest get a typed error naming why they lost.
	Consume(id uuid.UUID, actor model.Actor, companyID uuid.UUID) (*model.OneTimePermission, error)
	// ConsumeInTx is Consume for callers that already hold a transaction,
	// such as transfer approval.
	ConsumeInTx(tx *gorm.DB, id uuid.UUID, actor model.Actor) (*model.OneTimePermission, error)
	ActiveForUser(userID uuid.UUID, permissionType model.PermissionType) ([]model.OneTimePermission, error)
	SweepExpired() (int64, error)
}

type permissionService struct {
	db             TxManager
	permissionRepo repository.PermissionRepository
	audit          AuditService
	logger         *zap.Logger
	defaultTTL     time.Duration
}

func NewPermissionService(
	db TxManager,
	permissionRepo repository.PermissionRepository,
	audit AuditService,
	logger *zap.Logger,
	defaultTTL time.Duration,
) PermissionService {
	return &permissionService{
		db:             db,
		permissionRepo: permissionRepo,
		audit:          audit,
		logger:         logger,
		defaultTTL:     defaultTTL,
	}
}

func (s *permissionService) Grant(input GrantPermissionInput, actor model.Actor) (*model.OneTimePermission, error) {
	if !input.PermissionType.IsKnown() {
		return nil, apperror.BadRequest("unknown permission type: " + string(input.PermissionType))
	}
	ttl := input.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now().UTC()
	permission := &model.OneTimePermission{
		CompanyID:       input.CompanyID,
		GrantedToUserID: input.GrantedToUserID,
		GrantedByUserID: actor.UserID,
		PermissionType:  input.PermissionType,
		GrantedAt:       now,
		ExpiresAt:       now.Add(ttl),
		StoreID:         input.StoreID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.permissionRepo.Create(tx, permission); err != nil {
			return err
		}
		_, err := s.audit.Append(tx, AuditEntry{
			TenantID:   input.CompanyID,
			Actor:      actor,
			Action:     "permission.granted",
			EntityType: "one_time_permission",
			EntityID:   permission.ID.String(),
			Details: map[string]interface{}{
				"permission_type": string(input.PermissionType),
				"granted_to":      input.GrantedToUserID.String(),
				"expires_at":      permission.ExpiresAt.Format(time.RFC3339),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return permission, nil
}

func (s *permissionService) Consume(id uuid.UUID, actor model.Actor, companyID uuid.UUID) (*model.OneTimePermission, error) {
	var permission *model.OneTimePermission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		permission, err = s.ConsumeInTx(tx, id, actor)
		if err != nil {
			return err
		}
		_, err = s.audit.Append(tx, AuditEntry{
			TenantID:   companyID,
			Actor:      actor,
			Action:     "permission.consumed",
			EntityType: "one_time_permission",
			EntityID:   permission.ID.String(),
			Details: map[string]interface{}{
				"permission_type": string(permission.PermissionType),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return permission, nil
}

func (s *permissionService) ConsumeInTx(tx *gorm.DB, id uuid.UUID, actor model.Actor) (*model.OneTimePermission, error) {
	permission, err := s.permissionRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.PermissionNotFound()
	}
	if err != nil {
		return nil, err
	}
	// A grant is only usable by the user it was issued to. Everyone else
	// sees not-found so grant IDs leak nothing.
	if permission.GrantedToUserID != actor.UserID {
		return nil, apperror.PermissionNotFound()
	}

	now := time.Now().UTC()
	won, err := s.permissionRepo.ConsumeIfValid(tx, id, now)
	if err != nil {
		return nil, err
	}
	if !won {
		if permission.IsUsed || permission.UsedAt != nil {
			return nil, apperror.PermissionAlreadyUsed()
		}
		return nil, apperror.PermissionExpired()
	}

	permission.IsUsed = true
	permission.UsedAt = &now
	return permission, nil
}

func (s *permissionService) ActiveForUser(userID uuid.UUID, permissionType model.PermissionType) ([]model.OneTimePermission, error) {
	return s.permissionRepo.FindActiveForUser(userID, permissionType, time.Now().UTC())
}

// SweepExpired flags lapsed grants so listings stay clean. Consume never
// trusts the flag, it re-checks expires_at itself.
func (s *permissionService) SweepExpired() (int64, error) {
	swept, err := s.permissionRepo.MarkExpired(time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.logger.Info("expired one-time permissions swept", zap.Int64("count", swept))
	}
	return swept, nil
}
