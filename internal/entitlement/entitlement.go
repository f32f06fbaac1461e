package entitlement

import (
	"context"
	"time"

	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
)

// Module status as shown in the per-tenant overview matrix.
const (
	StatusActive   = "ACTIVE"
	StatusDisabled = "DISABLED"
	StatusLocked   = "LOCKED"
)

// EnabledModule is one read-time entitlement grant.
type EnabledModule struct {
	ModuleID   int64      `json:"module_id"`
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Source     string     `json:"source"`
	UsageLimit *int       `json:"usage_limit,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// OverviewItem is one row of the tenant module matrix: every catalog module
// with its plan allowance and current entitlement state.
type OverviewItem struct {
	ModuleID      int64      `json:"module_id"`
	Key           string     `json:"key"`
	Name          string     `json:"name"`
	IsCommon      bool       `json:"is_common"`
	AllowedByPlan bool       `json:"allowed_by_plan"`
	Enabled       bool       `json:"enabled"`
	Status        string     `json:"status"`
	Source        string     `json:"source,omitempty"`
	UsageLimit    *int       `json:"usage_limit,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Override sets a single tenant module entitlement by hand. Overrides carry
// MANUAL provenance so a safe-mode plan sync will not touch them.
type Override struct {
	TenantID   int64
	ModuleID   int64
	Enabled    bool
	UsageLimit *int
	ExpiresAt  *time.Time
}

// RepositoryAPI is the slice of the entity store the resolver reads from.
type RepositoryAPI interface {
	GetModuleByKey(ctx context.Context, key string) (*catalog.Module, error)
	GetModuleByID(ctx context.Context, moduleID int64) (*catalog.Module, error)
	ListModules(ctx context.Context) ([]catalog.Module, error)
	GetTenantModule(ctx context.Context, tenantID, moduleID int64) (*subscription.TenantModule, error)
	ListTenantModules(ctx context.Context, tenantID int64) ([]subscription.TenantModule, error)
	// ActivePlanModuleIDs returns the module ids granted by the tenant's
	// currently active, non-expired subscription. Empty when there is none.
	ActivePlanModuleIDs(ctx context.Context, tenantID int64) (map[int64]bool, error)
	UpsertTenantModule(ctx context.Context, row *subscription.TenantModule) error
}

// ServiceAPI is what transport and sibling services depend on.
type ServiceAPI interface {
	IsModuleEnabled(ctx context.Context, tenantID int64, moduleKey string) (bool, error)
	ListEnabledModules(ctx context.Context, tenantID int64) ([]EnabledModule, error)
	TenantModuleOverview(ctx context.Context, tenantID int64) ([]OverviewItem, error)
	OverrideTenantModule(ctx context.Context, override Override) (*OverviewItem, error)
}
