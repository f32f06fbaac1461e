package audit

import "time"

const (
	ActorTenantUser = "TENANT_USER"
	ActorSuperAdmin = "SUPER_ADMIN"
)

// AuditLog is append-only and never read by authorization decisions.
type AuditLog struct {
	ID           int64     `gorm:"primaryKey"`
	ActorType    string    `gorm:"column:actor_type;not null"`
	UserID       *int64    `gorm:"column:user_id"`
	SuperAdminID *int64    `gorm:"column:super_admin_id"`
	TenantID     *int64    `gorm:"column:tenant_id;index"`
	Action       string    `gorm:"column:action;not null"`
	Entity       string    `gorm:"column:entity"`
	EntityID     *int64    `gorm:"column:entity_id"`
	Meta         string    `gorm:"column:meta"`
	IPAddress    string    `gorm:"column:ip_address"`
	UserAgent    string    `gorm:"column:user_agent"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

// LoginAttempt records every authentication attempt, success or failure. It
// feeds security auditing; lockout counters live on the account rows.
type LoginAttempt struct {
	ID           int64     `gorm:"primaryKey"`
	ActorType    string    `gorm:"column:actor_type;not null"`
	UserID       *int64    `gorm:"column:user_id"`
	SuperAdminID *int64    `gorm:"column:super_admin_id"`
	TenantID     *int64    `gorm:"column:tenant_id"`
	Email        string    `gorm:"column:email;not null"`
	Success      bool      `gorm:"column:success;not null"`
	Reason       string    `gorm:"column:reason"`
	IPAddress    string    `gorm:"column:ip_address"`
	UserAgent    string    `gorm:"column:user_agent"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}
