package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
	"github.com/frahmantamala/tenant-admin/internal/entitlement"
	"github.com/frahmantamala/tenant-admin/internal/navigation"
	"github.com/frahmantamala/tenant-admin/internal/subscription"
)

// PasswordHasher is satisfied by the auth service.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// SubscriptionReader is the slice of the subscription lifecycle the me
// endpoint reads.
type SubscriptionReader interface {
	ActiveSubscription(ctx context.Context, tenantID int64) (*subscription.ActiveSubscriptionView, error)
}

// EntitlementReader is the slice of the entitlement resolver the me endpoint
// reads.
type EntitlementReader interface {
	ListEnabledModules(ctx context.Context, tenantID int64) ([]entitlement.EnabledModule, error)
}

type Service struct {
	repo          RepositoryAPI
	hasher        PasswordHasher
	subscriptions SubscriptionReader
	entitlements  EntitlementReader
	sidebar       navigation.ServiceAPI
	auditor       audit.Recorder
	logger        *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	hasher PasswordHasher,
	subscriptions SubscriptionReader,
	entitlements EntitlementReader,
	sidebar navigation.ServiceAPI,
	auditor audit.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:          repo,
		hasher:        hasher,
		subscriptions: subscriptions,
		entitlements:  entitlements,
		sidebar:       sidebar,
		auditor:       auditor,
		logger:        logger,
	}
}

func (s *Service) CreateUser(ctx context.Context, tenantID int64, params CreateParams) (*View, error) {
	if params.Email == "" || params.Password == "" || params.RoleID == 0 {
		return nil, internal.NewValidationError("email, password and role_id are required", internal.ErrCodeValidationFailed)
	}

	role, err := s.repo.GetRole(ctx, params.RoleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up role", err)
	}
	// A role from another tenant is indistinguishable from a missing one.
	if role == nil || role.TenantID != tenantID {
		return nil, internal.ErrRoleNotFound
	}

	existing, err := s.repo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	passwordHash, err := s.hasher.HashPassword(params.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &tenantdm.User{
		TenantID:     tenantID,
		RoleID:       params.RoleID,
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	entry := audit.Entry{
		ActorType: audit.ActorTenantUser,
		TenantID:  &tenantID,
		Action:    audit.ActionUserCreated,
		Entity:    "user",
		EntityID:  &u.ID,
		Meta:      map[string]interface{}{"email": u.Email, "role_id": u.RoleID},
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok && principal != nil {
		entry.UserID = &principal.UserID
	}
	s.auditor.Record(ctx, entry)

	return &View{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		RoleID:    u.RoleID,
		RoleName:  role.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}, nil
}

func (s *Service) ListUsers(ctx context.Context, tenantID int64) ([]View, error) {
	views, err := s.repo.ListUsers(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return views, nil
}

func (s *Service) SetUserStatus(ctx context.Context, tenantID, userID int64, active bool) error {
	if err := s.repo.SetUserActive(ctx, tenantID, userID, active); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		return internal.NewInternalError("failed to update user status", err)
	}
	return nil
}

// MeConfig assembles everything the tenant client needs right after login.
func (s *Service) MeConfig(ctx context.Context, principal *auth.Principal) (*MeConfig, error) {
	if principal == nil || principal.IsSuperAdmin() {
		return nil, internal.ErrWrongPrincipalType
	}

	sub, err := s.subscriptions.ActiveSubscription(ctx, principal.TenantID)
	if err != nil {
		return nil, err
	}

	modules, err := s.entitlements.ListEnabledModules(ctx, principal.TenantID)
	if err != nil {
		return nil, err
	}

	sidebar, err := s.sidebar.SidebarFor(ctx, principal)
	if err != nil {
		return nil, err
	}

	return &MeConfig{
		User: MeUser{
			ID:    principal.UserID,
			Email: principal.Email,
			Role:  principal.RoleName,
		},
		Tenant:       principal.Tenant,
		Subscription: sub,
		Modules:      modules,
		Permissions:  principal.Permissions.Keys(),
		UI:           MeUI{Sidebar: sidebar},
	}, nil
}
