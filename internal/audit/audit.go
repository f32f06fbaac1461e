package audit

import (
	"context"
	"time"
)

const (
	ActorTenantUser = "TENANT_USER"
	ActorSuperAdmin = "SUPER_ADMIN"
)

const EventTypeAuditRecorded = "audit.recorded"

// Common audit actions written by the platform and tenant-admin surfaces.
const (
	ActionTenantCreated         = "TENANT_CREATED"
	ActionTenantActivated       = "TENANT_ACTIVATED"
	ActionTenantDeactivated     = "TENANT_DEACTIVATED"
	ActionPlanCreated           = "PLAN_CREATED"
	ActionPlanUpdated           = "PLAN_UPDATED"
	ActionPlanModulesUpdated    = "PLAN_MODULES_UPDATED"
	ActionPlanAssigned          = "PLAN_ASSIGNED"
	ActionPlanSynced            = "PLAN_SYNCED"
	ActionModuleCreated         = "MODULE_CREATED"
	ActionTenantModuleEnabled   = "TENANT_MODULE_ENABLED"
	ActionTenantModuleDisabled  = "TENANT_MODULE_DISABLED"
	ActionRoleCreated           = "ROLE_CREATED"
	ActionRolePermissionsSet    = "ROLE_PERMISSIONS_SET"
	ActionUserCreated           = "USER_CREATED"
)

// Origin carries the request metadata persisted with every audit record.
type Origin struct {
	IPAddress string
	UserAgent string
}

// Entry is one append-only audit record. Meta is serialized as JSON.
type Entry struct {
	ActorType    string
	UserID       *int64
	SuperAdminID *int64
	TenantID     *int64
	Action       string
	Entity       string
	EntityID     *int64
	Meta         map[string]interface{}
	Origin       Origin
}

// Attempt is one authentication attempt, recorded for every login whether it
// succeeded or not.
type Attempt struct {
	ActorType    string
	UserID       *int64
	SuperAdminID *int64
	TenantID     *int64
	Email        string
	Success      bool
	Reason       string
	Origin       Origin
}

// Record is fire-and-forget: implementations log failures and never surface
// them to the caller.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// AttemptRecorder persists login attempts synchronously; the caller decides
// whether a failure is fatal.
type AttemptRecorder interface {
	RecordLoginAttempt(ctx context.Context, attempt Attempt) error
}

// LogView is the read shape returned by the super-admin audit query.
type LogView struct {
	ID        int64     `json:"id"`
	ActorType string    `json:"actor_type"`
	TenantID  *int64    `json:"tenant_id,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity,omitempty"`
	EntityID  *int64    `json:"entity_id,omitempty"`
	Meta      string    `json:"meta,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Filter struct {
	TenantID *int64
	Action   string
	Limit    int
	Offset   int
}
