package role

import (
	"context"
	"errors"

	"gorm.io/gorm"

	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateRole(ctx context.Context, role *tenantdm.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *Repository) GetRole(ctx context.Context, roleID int64) (*tenantdm.Role, error) {
	var role tenantdm.Role
	err := r.db.WithContext(ctx).First(&role, roleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *Repository) GetRoleByName(ctx context.Context, tenantID int64, name string) (*tenantdm.Role, error) {
	var role tenantdm.Role
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND name = ?", tenantID, name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *Repository) ListRoles(ctx context.Context, tenantID int64) ([]tenantdm.Role, error) {
	var roles []tenantdm.Role
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id").Find(&roles).Error
	return roles, err
}

func (r *Repository) GetRolePermissionKeys(ctx context.Context, roleID int64) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&tenantdm.Permission{}).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ?", roleID).
		Order("permissions.key").
		Pluck("permissions.key", &keys).Error
	return keys, err
}

// SetRolePermissions replaces the grant set in one transaction so a resolver
// reading concurrently sees either the old set or the new one, never a mix.
func (r *Repository) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&tenantdm.RolePermission{}).Error; err != nil {
			return err
		}
		for _, permissionID := range permissionIDs {
			link := &tenantdm.RolePermission{RoleID: roleID, PermissionID: permissionID}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) ListPermissions(ctx context.Context) ([]tenantdm.Permission, error) {
	var permissions []tenantdm.Permission
	err := r.db.WithContext(ctx).Order("key").Find(&permissions).Error
	return permissions, err
}

func (r *Repository) ListPermissionsByKeys(ctx context.Context, keys []string) ([]tenantdm.Permission, error) {
	var permissions []tenantdm.Permission
	err := r.db.WithContext(ctx).Where("key IN ?", keys).Find(&permissions).Error
	return permissions, err
}
