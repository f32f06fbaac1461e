package user

import (
	"context"
	"time"

	"github.com/frahmantamala/tenant-admin/internal/auth"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
	"github.com/frahmantamala/tenant-admin/internal/entitlement"
	"github.com/frahmantamala/tenant-admin/internal/navigation"
	"github.com/frahmantamala/tenant-admin/internal/subscription"
)

// View is the tenant user read shape. The password hash never leaves the
// repository layer.
type View struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	RoleID    int64     `json:"role_id"`
	RoleName  string    `json:"role_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateParams struct {
	Email    string
	Password string
	Name     string
	RoleID   int64
}

// MeConfig is the single bootstrap payload for the tenant UI: identity,
// subscription, entitlements, permissions and the composed sidebar in one
// round trip.
type MeConfig struct {
	User         MeUser                               `json:"user"`
	Tenant       auth.TenantInfo                      `json:"tenant"`
	Subscription *subscription.ActiveSubscriptionView `json:"subscription"`
	Modules      []entitlement.EnabledModule          `json:"modules"`
	Permissions  []string                             `json:"permissions"`
	UI           MeUI                                 `json:"ui"`
}

type MeUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type MeUI struct {
	Sidebar []navigation.Node `json:"sidebar"`
}

type RepositoryAPI interface {
	CreateUser(ctx context.Context, user *tenantdm.User) error
	GetUserByEmail(ctx context.Context, email string) (*tenantdm.User, error)
	GetRole(ctx context.Context, roleID int64) (*tenantdm.Role, error)
	ListUsers(ctx context.Context, tenantID int64) ([]View, error)
	SetUserActive(ctx context.Context, tenantID, userID int64, active bool) error
}

type ServiceAPI interface {
	CreateUser(ctx context.Context, tenantID int64, params CreateParams) (*View, error)
	ListUsers(ctx context.Context, tenantID int64) ([]View, error)
	SetUserStatus(ctx context.Context, tenantID, userID int64, active bool) error
	MeConfig(ctx context.Context, principal *auth.Principal) (*MeConfig, error)
}
