package tenant

import "time"

// Category determines which navigation groups and module-domain rules apply
// to a tenant.
const (
	CategorySchool     = "SCHOOL"
	CategoryCoaching   = "COACHING"
	CategoryClinic     = "CLINIC"
	CategorySalon      = "SALON"
	CategoryGym        = "GYM"
	CategoryRetail     = "RETAIL"
	CategoryPharmacy   = "PHARMACY"
	CategoryRestaurant = "RESTAURANT"
	CategoryCompany    = "COMPANY"
)

// Tenant is never hard-deleted; deactivation keeps audit and billing history.
type Tenant struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Category  string    `gorm:"column:category;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

// User belongs to exactly one tenant. Platform super admins live in their own
// table, not here.
type User struct {
	ID               int64      `gorm:"primaryKey"`
	TenantID         int64      `gorm:"column:tenant_id;not null;index"`
	RoleID           int64      `gorm:"column:role_id;not null"`
	Email            string     `gorm:"column:email;uniqueIndex;not null"`
	Name             string     `gorm:"column:name"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	IsActive         bool       `gorm:"column:is_active;default:true"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	CreatedAt        time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;default:now()"`
}

// SuperAdmin is a platform-level principal with no tenant.
type SuperAdmin struct {
	ID               int64      `gorm:"primaryKey"`
	Email            string     `gorm:"column:email;uniqueIndex;not null"`
	Name             string     `gorm:"column:name"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	IsActive         bool       `gorm:"column:is_active;default:true"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLogin        *time.Time `gorm:"column:last_login"`
	CreatedAt        time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;default:now()"`
}

// Role is scoped to a single tenant.
type Role struct {
	ID        int64     `gorm:"primaryKey"`
	TenantID  int64     `gorm:"column:tenant_id;not null;uniqueIndex:idx_roles_tenant_name"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_roles_tenant_name"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

// Permission is a global catalog entry; only role linkage is tenant-scoped.
type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Key         string    `gorm:"column:key;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

type RolePermission struct {
	ID           int64     `gorm:"primaryKey"`
	RoleID       int64     `gorm:"column:role_id;not null;uniqueIndex:idx_role_permissions_pair"`
	PermissionID int64     `gorm:"column:permission_id;not null;uniqueIndex:idx_role_permissions_pair"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}
