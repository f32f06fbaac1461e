package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	subscriptiondm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
)

// SyncMode controls what a plan sync does to entitlement rows the plan does
// not grant. SAFE leaves them alone, STRICT disables them.
type SyncMode string

const (
	SyncModeSafe   SyncMode = "SAFE"
	SyncModeStrict SyncMode = "STRICT"
)

func ParseSyncMode(raw string) (SyncMode, bool) {
	switch SyncMode(strings.ToUpper(strings.TrimSpace(raw))) {
	case SyncModeSafe:
		return SyncModeSafe, true
	case SyncModeStrict:
		return SyncModeStrict, true
	}
	return "", false
}

// ActiveSubscriptionView is the current-subscription read shape. Present only
// when the stored status is ACTIVE and the end date has not passed.
type ActiveSubscriptionView struct {
	ID        int64     `json:"id"`
	PlanID    int64     `json:"plan_id"`
	PlanName  string    `json:"plan_name"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// SyncReport summarizes a fleet-wide plan sync. Failed tenants keep their
// previous entitlements because each tenant syncs in its own transaction.
type SyncReport struct {
	PlanID          int64    `json:"plan_id"`
	Mode            SyncMode `json:"mode"`
	TenantsMatched  int      `json:"tenants_matched"`
	TenantsUpdated  int      `json:"tenants_updated"`
	FailedTenantIDs []int64  `json:"failed_tenant_ids,omitempty"`
}

// RepositoryAPI is the subscription slice of the entity store. Transaction
// runs fn against a repository bound to a single database transaction.
type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(repo RepositoryAPI) error) error

	GetPlan(ctx context.Context, planID int64) (*catalog.Plan, error)
	GetPlanModules(ctx context.Context, planID int64) ([]catalog.Module, error)

	GetActiveSubscription(ctx context.Context, tenantID int64, now time.Time) (*subscriptiondm.Subscription, error)
	CancelActiveSubscriptions(ctx context.Context, tenantID int64) error
	CreateSubscription(ctx context.Context, sub *subscriptiondm.Subscription) error

	ListTenantModules(ctx context.Context, tenantID int64) ([]subscriptiondm.TenantModule, error)
	UpsertTenantModule(ctx context.Context, row *subscriptiondm.TenantModule) error
	DisableTenantModulesExcept(ctx context.Context, tenantID int64, keepModuleIDs []int64) (int64, error)

	// TenantIDsOnPlan lists tenants whose current subscription is on the plan.
	TenantIDsOnPlan(ctx context.Context, planID int64, now time.Time) ([]int64, error)
}

// ServiceAPI is what transport and sibling services depend on.
type ServiceAPI interface {
	AssignPlan(ctx context.Context, tenantID, planID int64, mode SyncMode) (*ActiveSubscriptionView, error)
	SyncTenantModulesFromPlan(ctx context.Context, tenantID, planID int64, mode SyncMode) error
	SyncPlanToAllTenants(ctx context.Context, planID int64, mode SyncMode) (*SyncReport, error)
	ActiveSubscription(ctx context.Context, tenantID int64) (*ActiveSubscriptionView, error)
	HasActiveSubscription(ctx context.Context, tenantID int64) (bool, error)
	DefaultSyncMode() SyncMode
}
