package role

import (
	"context"
	"time"

	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
)

// View is the role read shape with its permission keys.
type View struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// PermissionView is one catalog entry.
type PermissionView struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Description string `json:"description,omitempty"`
}

type RepositoryAPI interface {
	CreateRole(ctx context.Context, role *tenantdm.Role) error
	GetRole(ctx context.Context, roleID int64) (*tenantdm.Role, error)
	GetRoleByName(ctx context.Context, tenantID int64, name string) (*tenantdm.Role, error)
	ListRoles(ctx context.Context, tenantID int64) ([]tenantdm.Role, error)
	GetRolePermissionKeys(ctx context.Context, roleID int64) ([]string, error)

	// SetRolePermissions replaces the role's permission set atomically. The
	// change is visible to the very next resolved request.
	SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error

	ListPermissions(ctx context.Context) ([]tenantdm.Permission, error)
	ListPermissionsByKeys(ctx context.Context, keys []string) ([]tenantdm.Permission, error)
}

type ServiceAPI interface {
	CreateRole(ctx context.Context, tenantID int64, name string, permissionKeys []string) (*View, error)
	ListRoles(ctx context.Context, tenantID int64) ([]View, error)
	SetRolePermissions(ctx context.Context, tenantID, roleID int64, permissionKeys []string) (*View, error)
	ListPermissionCatalog(ctx context.Context) ([]PermissionView, error)
}
