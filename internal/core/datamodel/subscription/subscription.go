package subscription

import "time"

const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Entitlement provenance. MANUAL rows survive safe-mode plan syncs.
const (
	SourcePlan   = "PLAN"
	SourceManual = "MANUAL"
)

// Subscription links a tenant to a plan for a bounded period. A stored ACTIVE
// status is only current while EndDate has not passed; readers must always
// compare EndDate against now.
type Subscription struct {
	ID        int64     `gorm:"primaryKey"`
	TenantID  int64     `gorm:"column:tenant_id;not null;index"`
	PlanID    int64     `gorm:"column:plan_id;not null"`
	Status    string    `gorm:"column:status;not null;default:'ACTIVE'"`
	StartDate time.Time `gorm:"column:start_date;not null"`
	EndDate   time.Time `gorm:"column:end_date;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

// TenantModule is the materialized entitlement record and the single source
// of truth for read-time module checks. Plan membership matters only when a
// sync rewrites these rows.
type TenantModule struct {
	ID         int64      `gorm:"primaryKey"`
	TenantID   int64      `gorm:"column:tenant_id;not null;uniqueIndex:idx_tenant_modules_pair"`
	ModuleID   int64      `gorm:"column:module_id;not null;uniqueIndex:idx_tenant_modules_pair"`
	Enabled    bool       `gorm:"column:enabled;default:false"`
	Source     string     `gorm:"column:source;not null;default:'PLAN'"`
	UsageLimit *int       `gorm:"column:usage_limit"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;default:now()"`
}
