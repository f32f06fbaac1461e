package tenant

import (
	"context"
	"time"

	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
)

// OnboardParams creates a tenant with its first admin in one shot.
type OnboardParams struct {
	Name          string
	Category      string
	AdminEmail    string
	AdminPassword string
}

// OnboardResult reports what the onboarding transaction created.
type OnboardResult struct {
	Tenant       tenantdm.Tenant `json:"tenant"`
	AdminUserID  int64           `json:"admin_user_id"`
	AdminRoleID  int64           `json:"admin_role_id"`
	PlanName     string          `json:"plan_name"`
	SubscribedTo time.Time       `json:"subscribed_to"`
}

// ListItem is one tenant row with its active-plan summary. Plan is "NONE"
// when no current subscription exists.
type ListItem struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	IsActive  bool       `json:"is_active"`
	Plan      string     `json:"plan"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type RepositoryAPI interface {
	// Onboard runs the whole creation as one transaction: tenant, admin role,
	// admin user, trial subscription, and plan module materialization either
	// all commit or none do.
	Onboard(ctx context.Context, t *tenantdm.Tenant, adminEmail, passwordHash string) (*OnboardResult, error)

	GetTenant(ctx context.Context, tenantID int64) (*tenantdm.Tenant, error)
	ListTenants(ctx context.Context) ([]tenantdm.Tenant, error)
	ActiveSubscriptionsByTenant(ctx context.Context, now time.Time) (map[int64]ActivePlanSummary, error)
	SetTenantActive(ctx context.Context, tenantID int64, active bool) error
}

// ActivePlanSummary pairs a tenant's current plan name with its end date.
type ActivePlanSummary struct {
	PlanName  string
	ExpiresAt time.Time
}

type ServiceAPI interface {
	Onboard(ctx context.Context, params OnboardParams) (*OnboardResult, error)
	ListTenants(ctx context.Context) ([]ListItem, error)
	SetTenantStatus(ctx context.Context, tenantID int64, active bool) error
}
