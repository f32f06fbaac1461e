package catalog

import "time"

// Module is a global feature-area catalog entry. Common modules are enabled
// for every tenant regardless of plan or override.
type Module struct {
	ID        int64     `gorm:"primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	IsCommon  bool      `gorm:"column:is_common;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

// ModuleTenantCategory restricts a non-common module to certain tenant
// categories. A module with no rows here is unrestricted.
type ModuleTenantCategory struct {
	ID             int64  `gorm:"primaryKey"`
	ModuleID       int64  `gorm:"column:module_id;not null;uniqueIndex:idx_module_tenant_categories_pair"`
	TenantCategory string `gorm:"column:tenant_category;not null;uniqueIndex:idx_module_tenant_categories_pair"`
}

// Plan is a priced catalog offering granting a set of modules for a duration.
type Plan struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;uniqueIndex;not null"`
	Price        int64     `gorm:"column:price;default:0"`
	DurationDays int       `gorm:"column:duration_days;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

type PlanModule struct {
	ID       int64 `gorm:"primaryKey"`
	PlanID   int64 `gorm:"column:plan_id;not null;uniqueIndex:idx_plan_modules_pair"`
	ModuleID int64 `gorm:"column:module_id;not null;uniqueIndex:idx_plan_modules_pair"`
}
