package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
)

type PermissionRepository interface {
	Create(tx *gorm.DB, permission *model.OneTimePermission) error
	FindByID(id uuid.UUID) (*model.OneTimePermission, error)
	// ConsumeIfValid is a compare-and-set: it marks the grant used only if
	// it is still unused, unexpired and inside its time window, and
	// reports whether this caller won.
	ConsumeIfValid(tx *gorm.DB, id uuid.UUID, now time.Time) (bool, error)
	FindActiveForUser(userID uuid.UUID, permissionType model.PermissionType, now time.Time) ([]model.OneTimePermission, error)
	MarkExpired(now time.Time) (int64, error)
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db}
}

func (r *permissionRepo) Create(tx *gorm.DB, permission *model.OneTimePermission) error {
	return tx.Create(permission).Error
}

func (r *permissionRepo) FindByID(id uuid.UUID) (*model.OneTimePermission, error) {
	var permission model.OneTimePermission
	if err := r.db.First(&permission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

// ConsumeIfValid relies on a single conditional UPDATE, not read-then-write,
// so exactly one of N concurrent callers observes RowsAffected == 1.
func (r *permissionRepo) ConsumeIfValid(tx *gorm.DB, id uuid.UUID, now time.Time) (bool, error) {
	res := tx.Model(&model.OneTimePermission{}).
		Where("id = ? AND is_used = ? AND is_expired = ? AND expires_at > ?", id, false, false, now).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *permissionRepo) FindActiveForUser(userID uuid.UUID, permissionType model.PermissionType, now time.Time) ([]model.OneTimePermission, error) {
	var permissions []model.OneTimePermission
	q := r.db.Where("granted_to_user_id = ? AND is_used = ? AND is_expired = ? AND expires_at > ?",
		userID, false, false, now)
	if permissionType != "" {
		q = q.Where("permission_type = ?", permissionType)
	}
	err := q.Order("expires_at ASC").Find(&permissions).Error
	return permissions, err
}

// MarkExpired flags grants past their window. Observational only: Consume
// re-checks expires_at directly, so correctness never depends on the sweep.
func (r *permissionRepo) MarkExpired(now time.Time) (int64, error) {
	res := r.db.Model(&model.OneTimePermission{}).
		Where("is_used = ? AND is_expired = ? AND expires_at <= ?", false, false, now).
		Update("is_expired", true)
	return res.RowsAffected, res.Error
}
