package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/tenant-admin/internal"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
	"github.com/frahmantamala/tenant-admin/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, u *tenantdm.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*tenantdm.User, error) {
	var u tenantdm.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetRole(ctx context.Context, roleID int64) (*tenantdm.Role, error) {
	var role tenantdm.Role
	err := r.db.WithContext(ctx).Where("id = ?", roleID).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *Repository) ListUsers(ctx context.Context, tenantID int64) ([]user.View, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.email, u.name, u.role_id, r.name AS role_name, u.is_active, u.created_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.tenant_id = ?
		ORDER BY u.created_at DESC`, tenantID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []user.View
	for rows.Next() {
		var v user.View
		if err := rows.Scan(&v.ID, &v.Email, &v.Name, &v.RoleID, &v.RoleName, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *Repository) SetUserActive(ctx context.Context, tenantID, userID int64, active bool) error {
	result := r.db.WithContext(ctx).Model(&tenantdm.User{}).
		Where("id = ? AND tenant_id = ?", userID, tenantID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
