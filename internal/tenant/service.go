package tenant

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/core/common/validation"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
)

// PasswordHasher is satisfied by the auth service.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo    RepositoryAPI
	hasher  PasswordHasher
	auditor audit.Recorder
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		auditor: auditor,
		logger:  logger,
	}
}

var tenantCategories = []string{
	tenantdm.CategorySchool,
	tenantdm.CategoryCoaching,
	tenantdm.CategoryClinic,
	tenantdm.CategorySalon,
	tenantdm.CategoryGym,
	tenantdm.CategoryRetail,
	tenantdm.CategoryPharmacy,
	tenantdm.CategoryRestaurant,
	tenantdm.CategoryCompany,
}

func validateOnboardParams(params OnboardParams) *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", params.Name).Required().MaxLength(200)
	v.Field("category", params.Category).Required().OneOf(tenantCategories...)
	v.Field("admin_email", params.AdminEmail).Required()
	v.Field("admin_password", params.AdminPassword).Required().MinLength(8)
	return v.Validate()
}

// Onboard creates the tenant, its Admin role and first user, a TRIAL
// subscription, and the trial plan's entitlement rows in one transaction.
func (s *Service) Onboard(ctx context.Context, params OnboardParams) (*OnboardResult, error) {
	if err := validateOnboardParams(params); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.HashPassword(params.AdminPassword)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	t := &tenantdm.Tenant{
		Name:     params.Name,
		Category: params.Category,
		IsActive: true,
	}

	result, err := s.repo.Onboard(ctx, t, params.AdminEmail, passwordHash)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, result.Tenant.ID, audit.ActionTenantCreated, map[string]interface{}{
		"tenant_name": params.Name,
		"admin_email": params.AdminEmail,
		"plan":        result.PlanName,
	})

	return result, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]ListItem, error) {
	tenants, err := s.repo.ListTenants(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list tenants", err)
	}

	summaries, err := s.repo.ActiveSubscriptionsByTenant(ctx, time.Now())
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve subscriptions", err)
	}

	items := make([]ListItem, 0, len(tenants))
	for _, t := range tenants {
		item := ListItem{
			ID:        t.ID,
			Name:      t.Name,
			Category:  t.Category,
			IsActive:  t.IsActive,
			Plan:      "NONE",
			CreatedAt: t.CreatedAt,
		}
		if summary, ok := summaries[t.ID]; ok {
			item.Plan = summary.PlanName
			expiresAt := summary.ExpiresAt
			item.ExpiresAt = &expiresAt
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) SetTenantStatus(ctx context.Context, tenantID int64, active bool) error {
	t, err := s.repo.GetTenant(ctx, tenantID)
	if err != nil {
		return internal.NewInternalError("failed to look up tenant", err)
	}
	if t == nil {
		return internal.ErrTenantNotFound
	}

	if err := s.repo.SetTenantActive(ctx, tenantID, active); err != nil {
		return internal.NewInternalError("failed to update tenant status", err)
	}

	action := audit.ActionTenantActivated
	if !active {
		action = audit.ActionTenantDeactivated
	}
	s.recordAudit(ctx, tenantID, action, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, tenantID int64, action string, meta map[string]interface{}) {
	entry := audit.Entry{
		ActorType: audit.ActorSuperAdmin,
		TenantID:  &tenantID,
		Action:    action,
		Entity:    "tenant",
		EntityID:  &tenantID,
		Meta:      meta,
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok && principal.IsSuperAdmin() {
		entry.SuperAdminID = &principal.SuperAdminID
	}
	s.auditor.Record(ctx, entry)
}
